// Package order provides the Order aggregate: a customer purchase with its
// item lines, amounts, delivery type and customer link.
//
// The package includes:
//   - Order: the aggregate root
//   - Item: an order line
//   - Status: the order lifecycle, including the staff-only states
//   - Type: Delivery or PickUp
//
// Key business rules:
//   - Total == Subtotal + ShippingCost after every mutation
//   - PickUp orders ship for free and are never routed
//   - A client's Pending order absorbs new purchases instead of creating a new order
//   - The customer link expires at ExpiresAt regardless of delivery progress
package order

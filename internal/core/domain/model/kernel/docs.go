// Package kernel holds the value objects shared by every aggregate of the
// delivery domain.
//
// The package includes:
//   - UUID: identifier of clients, orders, routes, stops and ledger rows
//   - GeoPoint: a validated WGS84 coordinate reported by a driver
//   - Money: a non-negative decimal amount
//   - Token: an opaque URL-safe credential for customer and driver links
//
// All values are immutable. Their zero values are rejected by Validate where a
// zero value would be ambiguous.
package kernel

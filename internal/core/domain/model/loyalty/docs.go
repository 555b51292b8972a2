// Package loyalty implements the points ledger.
//
// Clients earn floor(total/10) points when an order enters Delivered and lose
// the same amount when it leaves Delivered. Every movement is recorded as an
// append-only Transaction next to the balances kept on the client.
package loyalty

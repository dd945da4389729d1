// Package ledger declares the ports of the external ledger backend that
// owns products, order items, checkouts and stock.
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - The HTTP adapter lives in infrastructure/ledger
//
// Mutating calls return shared.Result values: a transport failure and a
// reported {success:false} produce the same failure shape.
package ledger

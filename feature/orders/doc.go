// Package orders assembles Source orders into the store, pushes them to Target
// as sales orders and keeps their fulfillment status converging.
//
// Assembly resolves (or synthesizes) the ordering customer and address and
// rewrites each line through the product's quantity modifier and overwrite.
// Push creates the sales order and its lines and allocates stock when the first
// available stock item covers the line. Status reconciliation translates both
// sides into a canonical Rank and issues, completes or ships the sales order one
// step per run; a stored target state is never moved backwards.
package orders

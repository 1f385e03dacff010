// Package store is the entity store: the local mirror of Shopware and InvenTree
// records, backed by gorm on MySQL or SQLite.
//
// Every mirrored row (Customer, Address, Product) carries a Mirror block with the
// Source id, the Target id and the presence flags. The store implements
// reconcile.Store, so the generic mirror engine can run its sweep and link records
// to Target without knowing the tables.
//
// Mutable fields are changed through typed patches (CustomerPatch, AddressPatch,
// ProductPatch, OrderPatch) applied by the single Update method; a nil field is
// left untouched. Order target states are written by SetTargetState only, behind a
// guard supplied by the fulfillment state machine.
//
// Rows are never deleted by synchronization. DeleteCustomer and DeleteAddress
// serve the clean command.
package store

// Package gateway holds the HTTP plumbing shared by the Shopware and InvenTree
// clients: bounded-timeout transport, JSON requests, and the mapping of remote
// outcomes onto the reconcile error taxonomy.
//
//	transport failure, timeout, unreadable body  -> reconcile.ErrNoData
//	404                                         -> reconcile.ErrNotFound
//	any other non-2xx                           -> reconcile.ErrRequestFailed
//	undecodable 2xx body                        -> reconcile.ErrInvalidResponse
package gateway

// Package shopware is the Source gateway: a client for the Shopware 6 Admin API.
//
// Listings are fetched page by page with List; single entities with Get, both
// with associations embedded on request. Tokens come from an auth.Provider fed by
// this package's Authenticator, which uses the OAuth client credentials grant.
//
// Errors follow the gateway taxonomy: a 404 from Get is reconcile.ErrNotFound
// and means the entity is gone, while a transport failure is reconcile.ErrNoData
// and means nothing.
package shopware

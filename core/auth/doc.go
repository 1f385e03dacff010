// Package auth manages the bearer tokens of the Shopware and InvenTree APIs.
//
// A Provider wraps one Authenticator (implemented by each gateway package) and
// hands out a cached token through a thread-safe accessor. Expired tokens are renewed
// lazily by Token or proactively by Run, the refresh loop started next to the cycle
// loop. Gateways receive a Provider at construction and never read ambient state.
package auth

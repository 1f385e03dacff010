// Package inventree is the Target gateway: a client for the InvenTree REST API.
//
// Create posts new companies, addresses, parts, sales orders and lines; Get
// reads single records and list endpoints (DecodeList accepts both the bare and
// the paginated shape); Action triggers sales order transitions such as issue,
// complete, allocate and ship; Delete serves the clean command.
//
// Requests carry "Authorization: Token <key>", obtained by this package's
// Authenticator from /api/user/token/ with basic authentication.
package inventree

// Package authgate provides a stateless authentication and authorization
// gateway for REST backends (HS256 token issuance and verification,
// per request principal resolution, route policies, uniform error bodies).
//
// Request flow:
//   - RequestAuthenticator reads the raw Authorization header. Missing,
//     malformed, expired and unresolvable credentials all leave the
//     request anonymous; the reason is only logged. A disabled account is
//     the one hard failure and surfaces as ErrAccountDisabled.
//   - Policy evaluates an ordered rule table, first match wins. Requests
//     matching no rule are denied.
//   - Handlers that need ownership call AuthorizeOwner once the resource
//     owner is known.
//   - Responder turns denials into {timestamp, status, error, message, path}
//     with a fixed message per status.
//
// Principals are loaded from the AccountStore on every request carrying a
// credential, so role and enabled changes apply immediately. The
// SecurityContext lives only for the request it was built for.
//
// AccountService adds registration and login on top of an AccountRegistry
// and the TokenService.
package authgate

// Package common contains shared constants, sentinel errors and the typed
// application error used across bookshelf components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// Error codes reported to clients alongside 401 responses.
const (
	CodeCredentialsRequired  = "credentials_required"
	CodeCredentialsBadScheme = "credentials_bad_scheme"
	CodeInvalidToken         = "invalid_token"
	CodeTokenExpired         = "token_expired"
)

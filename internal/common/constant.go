package common

// Header names used by the REST gateway, mirroring the managed backend.
const (
	// APIKeyHeaderName carries the project api key on every request.
	APIKeyHeaderName = "apikey"
	// AuthorizationHeaderName carries the same key as a bearer token.
	AuthorizationHeaderName = "Authorization"
	// PreferHeaderName asks the gateway to echo written rows back.
	PreferHeaderName = "Prefer"
)

// SessionTokenBytes is the number of random bytes behind a session token.
// The hex form is twice as long.
const SessionTokenBytes = 32

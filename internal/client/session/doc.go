// Package session owns the customer's authenticated identity on the client.
//
// Controller is the single authority for signing up, signing in and out,
// email verification, and keeping an active session alive. It is the only
// writer of the local session cache (storage.Cache) and talks to the remote
// users and user_sessions tables through client.Backend.
//
// Lifecycle:
//
//	Anonymous -> SignUp -> (unverified) -> VerifyEmail -> SignIn -> Authenticated
//	Authenticated -> SignOut | expiry -> Anonymous
//
// Bootstrap restores state on start-up. When no token survives but the
// ephemeral tier still holds a full-user backup, the controller enters
// DegradedRestored: a user is shown without a validated session.
//
// User-facing operations (SignUp, SignIn, VerifyEmail, ResendVerification)
// return errors. Housekeeping (SignOut, RefreshSession, RefreshUserData,
// Bootstrap, the keep-alive loop) logs failures and never returns them.
package session

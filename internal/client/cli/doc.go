// Package cli provides the interactive customer account client.
//
// It wires configuration, the local session cache, the backend gateway and
// the session controller, then runs a REPL. On start the session is
// bootstrapped from local storage; while a user is signed in a keep-alive
// loop refreshes the session, and every command counts as user activity.
//
// Commands:
//   - register, verify, resend: create an account and confirm the email
//   - login, logout: open and close a session
//   - whoami, refresh: inspect and refresh the current session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

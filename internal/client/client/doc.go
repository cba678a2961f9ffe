// Package client is the customer area's gateway to the account backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Backend interface) covering the
//     users and user_sessions tables, the verify_user_email procedure, and
//     the send-verification-email function.
//  2. A REST implementation (see RESTClient) that speaks the PostgREST
//     dialect: filters as "col=eq.value" query parameters, the apikey and
//     bearer headers on every request, and {code, message, details} error
//     bodies.
//  3. A gRPC health check (see HealthChecker) used by RESTClient.Ping when a
//     health address is configured.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrDuplicateKey, ErrNotFound.
// Error responses from the backend are returned as *APIError, which keeps the
// backend's message verbatim and unwraps to the matching sentinel.
//
// Concurrency & Contexts
//
// RESTClient and HealthChecker are safe for concurrent use. All operations
// accept context.Context and honor cancellation and timeouts.
package client

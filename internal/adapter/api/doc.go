// Package api is the client of the upstream barcode backend.
//
// Every call goes through TokenTransport, which adds the JSON Accept header
// and the bearer token carried by the request context (domain.ContextWithToken) and turns a 401 into
// domain.ErrUnauthorized. A failsafe-go circuit breaker stops hammering the
// backend while it returns server errors.
package api

// Package app provides the application service layer.
//
// Orchestrates the admin use cases: login and session resolution, barcode
// listing and creation, lookup list maintenance, user administration. Sits
// between HTTP handlers and the backend client and owns lookup cache
// invalidation. Depends on domain interfaces, not concrete implementations.
package app

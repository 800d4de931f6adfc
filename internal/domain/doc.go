// Package domain defines the core types and interfaces of the admin front-end.
//
// Concept-oriented files (session.go, barcode.go, lookup.go, user.go, ...)
// hold shared types and the interfaces consumed by the app and HTTP layers.
// No implementation code, just contracts.
package domain

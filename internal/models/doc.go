// Package models defines the records tipsplit keeps outside a single form.
//
// # Models
//
//   - SavedSplit: a computed split the user saved to history
//   - Session: an open server-side form, identified by a bearer token
//
// The form itself (raw inputs, preset marker, derived result) lives in
// package form and is never persisted beyond its session TTL.
//
// # Design Principles
//
//  1. Store full precision; round only when displaying.
//  2. Use ID strings instead of pointers for relationships.
package models

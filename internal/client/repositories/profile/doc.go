// Package profile persists the participant's local state as named JSON
// documents in the client SQLite database: the session record, the user
// profile, and the pending consent signature.
package profile

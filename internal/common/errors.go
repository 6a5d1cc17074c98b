// Package common defines shared constants and sentinel errors used across
// studybridge layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors.
	ErrAuth         = errors.New("authentication failed")
	ErrStudyFull    = errors.New("study is full")
	ErrNotConsented = errors.New("user has not consented to research")

	// Consent reconciliation errors.
	ErrAlreadyConsented = errors.New("already consented")
	ErrConsentSync      = errors.New("consent upload failed")

	// Upload pipeline errors.
	ErrTransport        = errors.New("transport failure")
	ErrValidationFailed = errors.New("upload validation failed")
)

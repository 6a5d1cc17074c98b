// Package common contains shared constants and sentinel errors used across
// studybridge components.
package common

// SessionTokenHeaderName is the HTTP header that carries the study session
// token on every authenticated request. The value is the empty string while
// signed out.
const SessionTokenHeaderName = "Bridge-Session"

// Names of the persisted JSON documents in the local profile store.
const (
	DocUserSession      = "user_session"
	DocUserProfile      = "user"
	DocConsentSignature = "consent_sig"
)

// ClientName identifies this client in submitted survey answers.
const ClientName = "android"

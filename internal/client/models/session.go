// Package models defines the local and wire data types of the study client:
// the authenticated session, the participant profile, the pending consent
// signature, and the durable upload-queue records.
package models

// SharingScope is the participant's data-sharing choice, using the wire
// strings understood by the study service.
type SharingScope string

const (
	SharingNone     SharingScope = "no_sharing"
	SharingSponsors SharingScope = "sponsors_and_partners"
	SharingAll      SharingScope = "all_qualified_researchers"
)

// Session is the local representation of an authenticated participant.
// It is created from a sign-in/sign-up response, mutated by consent upload
// and withdrawal, and persisted after every mutation.
type Session struct {
	Token        string       `json:"sessionToken"`
	Consented    bool         `json:"consented"`
	SharingScope SharingScope `json:"sharingScope"`
}

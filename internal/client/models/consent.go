package models

// ConsentSignature is a consent signed by the participant, possibly before
// an account exists. While it has not been acknowledged by the server it is
// kept as the pending-consent document in the profile store and deleted
// together with setting Session.Consented=true.
//
// ImageData carries the signature image base64-encoded, which is also the
// wire representation expected by the consent endpoint.
type ConsentSignature struct {
	Study         string       `json:"study"`
	Name          string       `json:"name"`
	BirthDate     string       `json:"birthdate"`
	ImageData     string       `json:"imageData"`
	ImageMimeType string       `json:"imageMimeType"`
	Scope         SharingScope `json:"scope"`
}

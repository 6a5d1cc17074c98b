package models

// ValidationStatus is the server-reported processing state of a completed
// remote upload, polled asynchronously after the blob transfer.
type ValidationStatus string

const (
	StatusRequested            ValidationStatus = "requested"
	StatusValidationInProgress ValidationStatus = "validation_in_progress"
	StatusSucceeded            ValidationStatus = "succeeded"
	StatusValidationFailed     ValidationStatus = "validation_failed"
	StatusUnknown              ValidationStatus = "unknown"
)

// UploadRequest is one durable queue record: a local file awaiting transport
// and server-side confirmation.
//
// RemoteID is empty while the file is untransmitted and is set exactly once,
// after the complete notification for the remote blob succeeds. The record
// survives process restarts and is deleted only on confirmed validation.
type UploadRequest struct {
	LocalName     string `json:"name"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
	ContentMD5    string `json:"contentMd5"`
	RemoteID      string `json:"-"`
}

// Sent reports whether the blob has been transferred and acknowledged, i.e.
// the record awaits validation rather than transmission.
func (r *UploadRequest) Sent() bool {
	return r.RemoteID != ""
}

// UploadSession is the ephemeral result of the begin-upload call: the remote
// upload id and the signed URL the file bytes must be PUT to. It is consumed
// immediately and never persisted.
type UploadSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

package bridge

import (
	"context"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
)

// Client is the remote study-management API consumed by the services layer.
//
// Every authenticated call carries the session token attached by the
// transport; SetSessionToken rebuilds the transport and must complete before
// any subsequent call observes the new token.
type Client interface {
	// SetSessionToken rebuilds the authenticated transport with the given
	// token. An empty token means signed out.
	SetSessionToken(token string)

	// SignUp creates an account and returns the server's message. A full
	// study is reported as common.ErrStudyFull, other rejections as
	// common.ErrAuth.
	SignUp(ctx context.Context, email, username, password string) (string, error)

	// SignIn authenticates. HTTP 200 returns the session; HTTP 412 returns
	// the session parsed from the error payload together with
	// common.ErrNotConsented (valid credentials, consent outstanding).
	SignIn(ctx context.Context, username, password string) (*models.Session, error)

	// SignOut invalidates the remote session and returns the server's
	// message.
	SignOut(ctx context.Context) (string, error)

	// RequestPasswordReset asks the service to email reset instructions.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResendEmailVerification re-sends the account verification mail.
	ResendEmailVerification(ctx context.Context, email string) error

	// ConsentSignature uploads a signed consent. HTTP 201 returns nil,
	// HTTP 409 returns common.ErrAlreadyConsented (another client won the
	// race), anything else common.ErrConsentSync.
	ConsentSignature(ctx context.Context, sig *models.ConsentSignature) error

	// WithdrawConsent withdraws the participant from the study and returns
	// the server's message.
	WithdrawConsent(ctx context.Context, reason string) (string, error)

	// SetDataSharing updates the participant's sharing scope.
	SetDataSharing(ctx context.Context, scope models.SharingScope) error

	// SubmitSurveyResponse posts a completed survey and returns the
	// server-assigned identifier.
	SubmitSurveyResponse(ctx context.Context, response *models.SurveyResponse) (string, error)

	// RequestUploadSession begins a file upload, returning the ephemeral
	// remote id and signed target URL.
	RequestUploadSession(ctx context.Context, request *models.UploadRequest) (*models.UploadSession, error)

	// UploadComplete notifies the service that the blob for id is ready.
	UploadComplete(ctx context.Context, id string) error

	// UploadStatus polls the validation state of a completed upload.
	UploadStatus(ctx context.Context, id string) (models.ValidationStatus, error)

	// PutBlob transfers file bytes directly to the signed URL with the
	// declared Content-Type and Content-MD5 headers.
	PutBlob(ctx context.Context, url string, data []byte, contentType, contentMD5 string) error
}

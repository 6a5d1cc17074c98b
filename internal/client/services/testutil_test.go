package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dmitrijs2005/studybridge/internal/client/config"
	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/client/repositories/profile"
	"github.com/dmitrijs2005/studybridge/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StudyID = "test-study"
	return cfg
}

func newManager(t *testing.T) (SessionManager, *fakeClient, profile.Repository) {
	t.Helper()
	repo := profile.NewSQLiteRepository(setupDB(t))
	client := newFakeClient()
	reconciler := NewConsentReconciler(client, repo, testLogger())
	return NewSessionManager(testConfig(), client, repo, reconciler, testLogger()), client, repo
}

// fakeClient is a bridge.Client test double. Unset hooks succeed with zero
// values; every call is counted.
type fakeClient struct {
	mu     sync.Mutex
	tokens []string
	calls  map[string]int

	signUpFn        func(email, username, password string) (string, error)
	signInFn        func(username, password string) (*models.Session, error)
	signOutFn       func() (string, error)
	consentFn       func(sig *models.ConsentSignature) error
	withdrawFn      func(reason string) (string, error)
	dataSharingFn   func(scope models.SharingScope) error
	surveyFn        func(response *models.SurveyResponse) (string, error)
	beginUploadFn   func(request *models.UploadRequest) (*models.UploadSession, error)
	completeFn      func(id string) error
	statusFn        func(id string) (models.ValidationStatus, error)
	putBlobFn       func(url string, data []byte, contentType, contentMD5 string) error
	passwordResetFn func(email string) error
	resendFn        func(email string) error
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}}
}

func (f *fakeClient) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) SetSessionToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeClient) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func (f *fakeClient) SignUp(_ context.Context, email, username, password string) (string, error) {
	f.count("signUp")
	if f.signUpFn != nil {
		return f.signUpFn(email, username, password)
	}
	return "", nil
}

func (f *fakeClient) SignIn(_ context.Context, username, password string) (*models.Session, error) {
	f.count("signIn")
	if f.signInFn != nil {
		return f.signInFn(username, password)
	}
	return &models.Session{Token: "tok", Consented: true}, nil
}

func (f *fakeClient) SignOut(_ context.Context) (string, error) {
	f.count("signOut")
	if f.signOutFn != nil {
		return f.signOutFn()
	}
	return "", nil
}

func (f *fakeClient) RequestPasswordReset(_ context.Context, email string) error {
	f.count("passwordReset")
	if f.passwordResetFn != nil {
		return f.passwordResetFn(email)
	}
	return nil
}

func (f *fakeClient) ResendEmailVerification(_ context.Context, email string) error {
	f.count("resendVerification")
	if f.resendFn != nil {
		return f.resendFn(email)
	}
	return nil
}

func (f *fakeClient) ConsentSignature(_ context.Context, sig *models.ConsentSignature) error {
	f.count("consentSignature")
	if f.consentFn != nil {
		return f.consentFn(sig)
	}
	return nil
}

func (f *fakeClient) WithdrawConsent(_ context.Context, reason string) (string, error) {
	f.count("withdrawConsent")
	if f.withdrawFn != nil {
		return f.withdrawFn(reason)
	}
	return "", nil
}

func (f *fakeClient) SetDataSharing(_ context.Context, scope models.SharingScope) error {
	f.count("dataSharing")
	if f.dataSharingFn != nil {
		return f.dataSharingFn(scope)
	}
	return nil
}

func (f *fakeClient) SubmitSurveyResponse(_ context.Context, response *models.SurveyResponse) (string, error) {
	f.count("surveyResponse")
	if f.surveyFn != nil {
		return f.surveyFn(response)
	}
	return "resp-1", nil
}

func (f *fakeClient) RequestUploadSession(_ context.Context, request *models.UploadRequest) (*models.UploadSession, error) {
	f.count("beginUpload")
	if f.beginUploadFn != nil {
		return f.beginUploadFn(request)
	}
	return &models.UploadSession{ID: "upl-1", URL: "https://blobs.example/signed"}, nil
}

func (f *fakeClient) UploadComplete(_ context.Context, id string) error {
	f.count("uploadComplete")
	if f.completeFn != nil {
		return f.completeFn(id)
	}
	return nil
}

func (f *fakeClient) UploadStatus(_ context.Context, id string) (models.ValidationStatus, error) {
	f.count("uploadStatus")
	if f.statusFn != nil {
		return f.statusFn(id)
	}
	return models.StatusValidationInProgress, nil
}

func (f *fakeClient) PutBlob(_ context.Context, url string, data []byte, contentType, contentMD5 string) error {
	f.count("putBlob")
	if f.putBlobFn != nil {
		return f.putBlobFn(url, data, contentType, contentMD5)
	}
	return nil
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE documents (
  name TEXT PRIMARY KEY,
  body BLOB NOT NULL
);
CREATE TABLE upload_requests (
  local_name TEXT PRIMARY KEY,
  content_type TEXT NOT NULL,
  content_length INTEGER NOT NULL,
  content_md5 TEXT NOT NULL,
  remote_id TEXT
);
`)
	require.NoError(t, err)

	return db
}

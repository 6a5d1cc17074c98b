// Package services contains the application services of the study client:
// session management, consent reconciliation, the upload pipeline, and
// survey result submission.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/studybridge/internal/client/bridge"
	"github.com/dmitrijs2005/studybridge/internal/client/config"
	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/client/repositories/profile"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/dmitrijs2005/studybridge/internal/logging"
)

// SessionManager owns the authenticated session: the token, the consent
// flag and the sharing scope. It is the only component that mutates or
// persists the session record, and it rebuilds the authenticated transport
// whenever the token changes.
//
// Contract:
//   - Initialize: load the persisted session, rebuild the transport, then
//     reconcile any pending consent.
//   - SignUp/SignIn/SignOut: remote auth calls; outcomes are reported as a
//     DataResponse, never as raw protocol errors. A 412 sign-in (valid
//     credentials, consent outstanding) is a success.
//   - SignOut does not clear the persisted session by itself.
//   - WithdrawConsent/SetSharingScope mutate local state only after the
//     remote call succeeded.
//   - SaveConsentLocally never touches the network.
type SessionManager interface {
	Initialize(ctx context.Context) error
	SignUp(ctx context.Context, email, username, password string) (*models.DataResponse, error)
	SignIn(ctx context.Context, username, password string) (*models.DataResponse, error)
	SignOut(ctx context.Context) (*models.DataResponse, error)
	WithdrawConsent(ctx context.Context, reason string) (*models.DataResponse, error)
	SetSharingScope(ctx context.Context, scope models.SharingScope) models.ScopeUpdate
	SaveConsentLocally(ctx context.Context, name, birthDate string, image []byte, mimeType string, scope models.SharingScope) error
	Reconcile(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResendEmailVerification(ctx context.Context, email string) error

	IsSignedIn() bool
	IsSignedUp(ctx context.Context) (bool, error)
	IsConsented(ctx context.Context) (bool, error)
	Session() *models.Session
	SharingScope() models.SharingScope
	UserEmail(ctx context.Context) (string, error)
}

type sessionManager struct {
	cfg        *config.Config
	client     bridge.Client
	profile    profile.Repository
	reconciler *ConsentReconciler
	log        logging.Logger

	mu       sync.Mutex
	session  *models.Session
	signedIn bool
}

// NewSessionManager constructs a SessionManager over the given transport,
// profile store and reconciler.
func NewSessionManager(cfg *config.Config, client bridge.Client, repo profile.Repository, reconciler *ConsentReconciler, log logging.Logger) SessionManager {
	return &sessionManager{
		cfg:        cfg,
		client:     client,
		profile:    repo,
		reconciler: reconciler,
		log:        log.With("component", "session"),
	}
}

// Initialize loads the persisted session (absence means signed out),
// rebuilds the transport with the session token, and reconciles any pending
// consent. A failed reconciliation is returned but leaves the loaded
// session in place; it is re-attempted on the next sign-in or Initialize.
func (m *sessionManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.profile.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	m.session = s
	m.signedIn = s != nil

	token := ""
	if s != nil {
		token = s.Token
	}
	m.client.SetSessionToken(token)

	return m.reconcileLocked(ctx)
}

// reconcileLocked runs consent reconciliation for the current session.
// Callers must hold m.mu.
func (m *sessionManager) reconcileLocked(ctx context.Context) error {
	if !m.signedIn {
		return nil
	}
	return m.reconciler.ReconcileIfNeeded(ctx, m.session)
}

// applySessionLocked persists the session, marks the manager signed in and
// rebuilds the transport. Callers must hold m.mu. The rebuild happens before
// control returns, so no later authenticated call can observe a stale token.
func (m *sessionManager) applySessionLocked(ctx context.Context, s *models.Session) error {
	if err := m.profile.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	m.session = s
	m.signedIn = true
	m.client.SetSessionToken(s.Token)
	return nil
}

// SignUp stores the email into the local profile first, independent of the
// network outcome, so a later consent save has an email to associate. Then
// it issues the remote sign-up.
func (m *sessionManager) SignUp(ctx context.Context, email, username, password string) (*models.DataResponse, error) {
	if err := m.upsertProfile(ctx, func(p *models.UserProfile) {
		p.Email = email
	}); err != nil {
		return nil, err
	}

	msg, err := m.client.SignUp(ctx, email, username, password)
	if err != nil {
		return &models.DataResponse{Success: false, Message: err.Error()}, err
	}
	return &models.DataResponse{Success: true, Message: msg}, nil
}

// SignIn authenticates against the study service. Both a 200 and a 412
// response carry a session; the latter means valid credentials with consent
// outstanding and is a success from the caller's perspective. On obtaining
// a session the manager persists it, rebuilds the transport and runs
// consent reconciliation.
func (m *sessionManager) SignIn(ctx context.Context, username, password string) (*models.DataResponse, error) {
	s, err := m.client.SignIn(ctx, username, password)
	if err != nil && !errors.Is(err, common.ErrNotConsented) {
		return &models.DataResponse{Success: false, Message: err.Error()}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.applySessionLocked(ctx, s); err != nil {
		return nil, err
	}

	resp := &models.DataResponse{Success: true}
	if !s.Consented {
		resp.Message = common.ErrNotConsented.Error()
	}

	if err := m.reconcileLocked(ctx); err != nil {
		// sign-in itself succeeded; the consent upload failure is surfaced
		// alongside and re-attempted at the next opportunity
		m.log.Error(ctx, "consent reconciliation failed", "error", err)
		return resp, err
	}
	return resp, nil
}

// SignOut invalidates the remote session. It does not clear the persisted
// session record; that is the caller's decision.
func (m *sessionManager) SignOut(ctx context.Context) (*models.DataResponse, error) {
	msg, err := m.client.SignOut(ctx)
	if err != nil {
		return &models.DataResponse{Success: false, Message: msg}, err
	}
	return &models.DataResponse{Success: true, Message: msg}, nil
}

// WithdrawConsent withdraws the participant. Only after the remote call
// succeeds is the local session marked unconsented, persisted, and the
// transport rebuilt.
func (m *sessionManager) WithdrawConsent(ctx context.Context, reason string) (*models.DataResponse, error) {
	msg, err := m.client.WithdrawConsent(ctx, reason)
	if err != nil {
		return &models.DataResponse{Success: false, Message: msg}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.Consented = false
		if err := m.profile.SaveSession(ctx, m.session); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
		m.client.SetSessionToken(m.session.Token)
	}
	return &models.DataResponse{Success: true, Message: msg}, nil
}

// SetSharingScope is best-effort: the remote update is attempted, and only
// on success is the local session changed. A remote failure is logged and
// reported as ScopeAppliedLocalPending, never an error.
func (m *sessionManager) SetSharingScope(ctx context.Context, scope models.SharingScope) models.ScopeUpdate {
	if err := m.client.SetDataSharing(ctx, scope); err != nil {
		m.log.Error(ctx, "sharing scope update failed", "scope", scope, "error", err)
		return models.ScopeUpdate{Applied: models.ScopeAppliedLocalPending, Scope: scope}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.SharingScope = scope
		if err := m.profile.SaveSession(ctx, m.session); err != nil {
			m.log.Error(ctx, "saving session after scope update", "error", err)
			return models.ScopeUpdate{Applied: models.ScopeAppliedLocalPending, Scope: scope}
		}
	}
	return models.ScopeUpdate{Applied: models.ScopeAppliedRemotely, Scope: scope}
}

// SaveConsentLocally writes the signed consent to durable storage and
// upserts the profile with name and birth date. It supports signing consent
// before an account exists, so it never contacts the network; the pending
// signature is uploaded by the reconciler at the next opportunity.
func (m *sessionManager) SaveConsentLocally(ctx context.Context, name, birthDate string, image []byte, mimeType string, scope models.SharingScope) error {
	if mimeType == "" {
		mimeType = "image/png"
	}

	sig := &models.ConsentSignature{
		Study:         m.cfg.StudyID,
		Name:          name,
		BirthDate:     birthDate,
		ImageData:     base64.StdEncoding.EncodeToString(image),
		ImageMimeType: mimeType,
		Scope:         scope,
	}
	if err := m.profile.SaveConsent(ctx, sig); err != nil {
		return fmt.Errorf("saving consent signature: %w", err)
	}

	return m.upsertProfile(ctx, func(p *models.UserProfile) {
		p.Name = name
		p.BirthDate = birthDate
	})
}

// Reconcile runs consent reconciliation on demand, outside the automatic
// initialization and sign-in triggers. A no-op when signed out or when no
// pending signature exists.
func (m *sessionManager) Reconcile(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconcileLocked(ctx)
}

func (m *sessionManager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.client.RequestPasswordReset(ctx, email)
}

func (m *sessionManager) ResendEmailVerification(ctx context.Context, email string) error {
	return m.client.ResendEmailVerification(ctx, email)
}

func (m *sessionManager) IsSignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signedIn
}

// IsSignedUp reports whether an account was created on this device, i.e.
// a profile with an email exists.
func (m *sessionManager) IsSignedUp(ctx context.Context) (bool, error) {
	p, err := m.profile.LoadProfile(ctx)
	if err != nil {
		return false, err
	}
	return p != nil && p.Email != "", nil
}

// IsConsented treats a locally signed, not-yet-confirmed consent as
// provisionally consented.
func (m *sessionManager) IsConsented(ctx context.Context) (bool, error) {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()
	return m.reconciler.IsConsented(ctx, s)
}

// Session returns a copy of the current session, or nil when signed out.
func (m *sessionManager) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// SharingScope returns the current scope, or SharingNone when signed out.
func (m *sessionManager) SharingScope() models.SharingScope {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return models.SharingNone
	}
	return m.session.SharingScope
}

func (m *sessionManager) UserEmail(ctx context.Context) (string, error) {
	p, err := m.profile.LoadProfile(ctx)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return p.Email, nil
}

// upsertProfile loads the profile (creating an empty one if absent),
// applies mutate, and saves it back.
func (m *sessionManager) upsertProfile(ctx context.Context, mutate func(*models.UserProfile)) error {
	p, err := m.profile.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	if p == nil {
		p = &models.UserProfile{}
	}
	mutate(p)
	if err := m.profile.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

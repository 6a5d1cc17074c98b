package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studybridge/internal/client/bridge"
	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/client/repositories/profile"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/dmitrijs2005/studybridge/internal/logging"
)

// ConsentReconciler detects a locally signed, not-yet-uploaded consent and
// uploads it opportunistically: after every successful sign-in and after
// process initialization.
type ConsentReconciler struct {
	client  bridge.Client
	profile profile.Repository
	log     logging.Logger
}

func NewConsentReconciler(client bridge.Client, repo profile.Repository, log logging.Logger) *ConsentReconciler {
	return &ConsentReconciler{
		client:  client,
		profile: repo,
		log:     log.With("component", "consent"),
	}
}

// ReconcileIfNeeded uploads the pending consent signature if the session
// reports unconsented and a pending signature exists locally. Both a 201
// (created) and a 409 (another client already consented) converge to the
// same state: consented=true persisted, pending signature deleted. Any
// other response is returned as a consent-sync failure and NOT retried
// here; reconciliation fires again at the next sign-in or initialization
// as long as the pending document exists.
//
// session is mutated and persisted on success.
func (r *ConsentReconciler) ReconcileIfNeeded(ctx context.Context, session *models.Session) error {
	if session == nil || session.Consented {
		return nil
	}

	has, err := r.profile.HasConsent(ctx)
	if err != nil {
		return fmt.Errorf("checking pending consent: %w", err)
	}
	if !has {
		return nil
	}

	sig, err := r.profile.LoadConsent(ctx)
	if err != nil {
		return fmt.Errorf("loading pending consent: %w", err)
	}

	err = r.client.ConsentSignature(ctx, sig)
	if err != nil && !errors.Is(err, common.ErrAlreadyConsented) {
		return err
	}
	if errors.Is(err, common.ErrAlreadyConsented) {
		r.log.Info(ctx, "consent already on record, treating as uploaded")
	}

	consented := *session
	consented.Consented = true
	if err := r.profile.MarkConsented(ctx, &consented); err != nil {
		return fmt.Errorf("recording consent: %w", err)
	}
	session.Consented = true

	r.log.Info(ctx, "pending consent uploaded")
	return nil
}

// IsConsented reports true if the remote session says consented OR a
// pending signature still exists locally: "signed offline, not yet
// confirmed" counts as provisionally consented for UI gating.
func (r *ConsentReconciler) IsConsented(ctx context.Context, session *models.Session) (bool, error) {
	if session != nil && session.Consented {
		return true, nil
	}
	return r.profile.HasConsent(ctx)
}

package profile

import (
	"context"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
)

// Repository is the persisted profile store: three independently readable,
// writable and clearable JSON documents (the session record, the user
// profile, and the pending consent signature).
//
// A missing document is not an error: loads return (nil, nil) so callers can
// treat absence as "no session"/"no profile".
type Repository interface {
	// LoadSession returns the persisted session, or nil if none is stored.
	LoadSession(ctx context.Context) (*models.Session, error)

	// SaveSession persists the session record.
	SaveSession(ctx context.Context, s *models.Session) error

	// LoadProfile returns the persisted user profile, or nil if absent.
	LoadProfile(ctx context.Context) (*models.UserProfile, error)

	// SaveProfile persists the user profile.
	SaveProfile(ctx context.Context, p *models.UserProfile) error

	// LoadConsent returns the pending consent signature, or nil if absent.
	LoadConsent(ctx context.Context) (*models.ConsentSignature, error)

	// SaveConsent persists the pending consent signature.
	SaveConsent(ctx context.Context, c *models.ConsentSignature) error

	// HasConsent reports whether a pending consent signature is stored.
	HasConsent(ctx context.Context) (bool, error)

	// DeleteConsent removes the pending consent signature, if any.
	DeleteConsent(ctx context.Context) error

	// MarkConsented saves the session and deletes the pending signature
	// atomically.
	MarkConsented(ctx context.Context, s *models.Session) error
}

package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/dmitrijs2005/studybridge/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX

	// sqlDB is the raw handle used to open transactions; db and sqlDB are
	// the same object except inside MarkConsented's transactional scope.
	sqlDB *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, sqlDB: db}
}

func (r *SQLiteRepository) get(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document[%s]: %w", name, err)
	}
	return body, nil
}

func (r *SQLiteRepository) set(ctx context.Context, name string, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (name, body) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body
	`, name, body)
	if err != nil {
		return fmt.Errorf("failed to set document[%s]: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete document[%s]: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*models.Session, error) {
	var s models.Session
	ok, err := r.load(ctx, common.DocUserSession, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s *models.Session) error {
	return r.save(ctx, common.DocUserSession, s)
}

func (r *SQLiteRepository) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	ok, err := r.load(ctx, common.DocUserProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	return r.save(ctx, common.DocUserProfile, p)
}

func (r *SQLiteRepository) LoadConsent(ctx context.Context) (*models.ConsentSignature, error) {
	var c models.ConsentSignature
	ok, err := r.load(ctx, common.DocConsentSignature, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepository) SaveConsent(ctx context.Context, c *models.ConsentSignature) error {
	return r.save(ctx, common.DocConsentSignature, c)
}

func (r *SQLiteRepository) HasConsent(ctx context.Context) (bool, error) {
	body, err := r.get(ctx, common.DocConsentSignature)
	if err != nil {
		return false, err
	}
	return body != nil, nil
}

func (r *SQLiteRepository) DeleteConsent(ctx context.Context) error {
	return r.delete(ctx, common.DocConsentSignature)
}

// MarkConsented persists the consented session and removes the pending
// signature in a single transaction, so the two documents never diverge.
func (r *SQLiteRepository) MarkConsented(ctx context.Context, s *models.Session) error {
	return dbx.WithTx(ctx, r.sqlDB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := &SQLiteRepository{db: tx}
		if err := txRepo.SaveSession(ctx, s); err != nil {
			return err
		}
		return txRepo.DeleteConsent(ctx)
	})
}

func (r *SQLiteRepository) load(ctx context.Context, name string, v any) (bool, error) {
	body, err := r.get(ctx, name)
	if err != nil {
		return false, err
	}
	if body == nil {
		return false, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("failed to decode document[%s]: %w", name, err)
	}
	return true, nil
}

func (r *SQLiteRepository) save(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document[%s]: %w", name, err)
	}
	return r.set(ctx, name, body)
}

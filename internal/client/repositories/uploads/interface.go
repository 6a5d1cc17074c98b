package uploads

import (
	"context"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
)

// Repository is the durable upload queue. At most one record exists per
// local name; a record stays in the table until its upload is confirmed.
type Repository interface {
	// Upsert inserts or replaces the queue record for request.LocalName.
	// The remote id of a replaced record is reset, re-entering the
	// untransmitted state.
	Upsert(ctx context.Context, request *models.UploadRequest) error

	// Get returns the record for the given local name, or
	// common.ErrorNotFound if no such record exists.
	Get(ctx context.Context, localName string) (*models.UploadRequest, error)

	// List returns all queued records, untransmitted first.
	List(ctx context.Context) ([]*models.UploadRequest, error)

	// SetRemoteID assigns the remote id to a record that does not have one
	// yet. It reports whether the assignment happened: false means the
	// record is gone or already carries a remote id, so the id transitions
	// empty→non-empty at most once regardless of overlapping passes.
	SetRemoteID(ctx context.Context, localName, remoteID string) (bool, error)

	// ClearRemoteID resets the record to the untransmitted state, causing
	// a full retransmission on the next queue pass.
	ClearRemoteID(ctx context.Context, localName string) error

	// Delete removes the record once the upload is confirmed.
	Delete(ctx context.Context, localName string) error
}

package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/dmitrijs2005/studybridge/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.UploadRequest) error {

	query := ` INSERT INTO upload_requests (local_name, content_type, content_length, content_md5, remote_id)
			values (?, ?, ?, ?, NULL)
			ON CONFLICT(local_name) DO UPDATE SET content_type = excluded.content_type,
				content_length = excluded.content_length,
				content_md5 = excluded.content_md5,
				remote_id = NULL
	`
	_, err := r.db.ExecContext(ctx, query, e.LocalName, e.ContentType, e.ContentLength, e.ContentMD5)
	if err != nil {
		return fmt.Errorf("failed to upsert upload request: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, localName string) (*models.UploadRequest, error) {

	query := `select local_name, content_type, content_length, content_md5, remote_id
		from upload_requests where local_name=?`
	row := r.db.QueryRowContext(ctx, query, localName)

	e := &models.UploadRequest{}
	var remoteID sql.NullString
	err := row.Scan(&e.LocalName, &e.ContentType, &e.ContentLength, &e.ContentMD5, &remoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get upload request: %w", err)
	}
	e.RemoteID = remoteID.String

	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.UploadRequest, error) {

	query := `select local_name, content_type, content_length, content_md5, remote_id
		from upload_requests order by remote_id is not null, local_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting upload requests: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadRequest

	for rows.Next() {
		var item = &models.UploadRequest{}
		var remoteID sql.NullString
		err := rows.Scan(&item.LocalName, &item.ContentType, &item.ContentLength, &item.ContentMD5, &remoteID)
		if err != nil {
			return nil, err
		}
		item.RemoteID = remoteID.String
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// SetRemoteID is the only write that moves a record out of the untransmitted
// state. The WHERE clause makes the read-modify-write atomic: a concurrent
// pass that already assigned an id causes this call to report false instead
// of overwriting it.
func (r *SQLiteRepository) SetRemoteID(ctx context.Context, localName, remoteID string) (bool, error) {

	query := `update upload_requests set remote_id=? where local_name=? and remote_id is null`
	result, err := r.db.ExecContext(ctx, query, remoteID, localName)
	if err != nil {
		return false, fmt.Errorf("failed to set remote id: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

func (r *SQLiteRepository) ClearRemoteID(ctx context.Context, localName string) error {

	query := `update upload_requests set remote_id=NULL where local_name=?`
	_, err := r.db.ExecContext(ctx, query, localName)
	if err != nil {
		return fmt.Errorf("failed to clear remote id: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localName string) error {

	query := `delete from upload_requests where local_name=?`
	result, err := r.db.ExecContext(ctx, query, localName)
	if err != nil {
		return fmt.Errorf("failed to delete upload request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected != 1 {
		return common.ErrorNotFound
	}

	return nil
}

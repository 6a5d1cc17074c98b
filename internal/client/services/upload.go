package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studybridge/internal/blobstore"
	"github.com/dmitrijs2005/studybridge/internal/client/bridge"
	"github.com/dmitrijs2005/studybridge/internal/client/config"
	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/dmitrijs2005/studybridge/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// UploadPipeline drives queued files through the three-phase remote upload
// protocol and the validation-polling state machine.
//
// Per record the life cycle is: untransmitted (no remote id) → transmitted,
// awaiting validation (remote id set) → confirmed (record and local file
// removed). All three transmission calls must succeed before the remote id
// is persisted; a failure anywhere leaves the record untransmitted, so the
// whole phase is safely repeated on the next pass.
type UploadPipeline struct {
	client bridge.Client
	queue  uploads.Repository
	blobs  blobstore.Store
	policy config.ValidationFailurePolicy
	log    logging.Logger

	// inflight serializes processing per local name: the blob transfer is
	// a side-effecting PUT and must not run twice concurrently for the
	// same file.
	inflight singleflight.Group
}

func NewUploadPipeline(client bridge.Client, queue uploads.Repository, blobs blobstore.Store, policy config.ValidationFailurePolicy, log logging.Logger) *UploadPipeline {
	return &UploadPipeline{
		client: client,
		queue:  queue,
		blobs:  blobs,
		policy: policy,
		log:    log.With("component", "uploads"),
	}
}

// Enqueue registers a file already present in the blob store for transport:
// it computes the content length and MD5 digest and upserts the queue
// record. Re-enqueueing a local name restarts its upload from scratch.
func (p *UploadPipeline) Enqueue(ctx context.Context, localName, contentType string) (*models.UploadRequest, error) {
	size, err := p.blobs.Size(localName)
	if err != nil {
		return nil, fmt.Errorf("stat queued file: %w", err)
	}
	digest, err := p.blobs.MD5(localName)
	if err != nil {
		return nil, fmt.Errorf("digest queued file: %w", err)
	}

	request := &models.UploadRequest{
		LocalName:     localName,
		ContentType:   contentType,
		ContentLength: size,
		ContentMD5:    digest,
	}
	if err := p.queue.Upsert(ctx, request); err != nil {
		return nil, err
	}

	p.log.Debug(ctx, "queued file for upload", "name", localName, "size", size)
	return request, nil
}

// StageData writes a payload into the blob store under a fresh unique name
// and enqueues it. Useful for generated artifacts such as survey archives.
func (p *UploadPipeline) StageData(ctx context.Context, prefix, contentType string, data []byte) (*models.UploadRequest, error) {
	localName := fmt.Sprintf("%s-%s", prefix, uuid.NewString())
	if err := p.blobs.Write(localName, data); err != nil {
		return nil, err
	}
	return p.Enqueue(ctx, localName, contentType)
}

// ProcessQueue makes one pass over all persisted upload requests:
// untransmitted records are submitted, transmitted ones have their
// validation status polled. Failures are caught per record and logged, so
// one broken upload never blocks the rest; invoking ProcessQueue with no
// eligible records is a no-op.
func (p *UploadPipeline) ProcessQueue(ctx context.Context) error {
	records, err := p.queue.List(ctx)
	if err != nil {
		return fmt.Errorf("listing upload queue: %w", err)
	}

	for _, record := range records {
		record := record
		_, err, _ := p.inflight.Do(record.LocalName, func() (any, error) {
			return nil, p.processRecord(ctx, record)
		})
		if err != nil {
			p.log.Error(ctx, "upload processing failed, will retry later",
				"name", record.LocalName, "error", err)
		}
	}
	return nil
}

func (p *UploadPipeline) processRecord(ctx context.Context, record *models.UploadRequest) error {
	if !record.Sent() {
		p.log.Debug(ctx, "starting upload", "name", record.LocalName)
		return p.transmit(ctx, record)
	}
	p.log.Debug(ctx, "remote id found, confirming upload", "name", record.LocalName, "remote_id", record.RemoteID)
	return p.confirm(ctx, record)
}

// transmit performs the three sequential remote calls of the upload
// protocol. Order matters: each call depends on the prior result. The
// remote id is written to the queue only after the complete notification
// succeeded, so the pair (request, remote id) is persisted exactly once and
// never partially.
func (p *UploadPipeline) transmit(ctx context.Context, record *models.UploadRequest) error {
	session, err := p.client.RequestUploadSession(ctx, record)
	if err != nil {
		return fmt.Errorf("begin upload: %w", err)
	}

	data, err := p.blobs.Read(record.LocalName)
	if err != nil {
		return fmt.Errorf("read queued file: %w", err)
	}

	if err := p.client.PutBlob(ctx, session.URL, data, record.ContentType, record.ContentMD5); err != nil {
		return fmt.Errorf("blob transfer: %w", err)
	}

	if err := p.client.UploadComplete(ctx, session.ID); err != nil {
		return fmt.Errorf("complete notification: %w", err)
	}

	claimed, err := p.queue.SetRemoteID(ctx, record.LocalName, session.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// an overlapping pass got there first; its id stands
		p.log.Warn(ctx, "remote id already assigned, keeping existing", "name", record.LocalName)
		return nil
	}
	record.RemoteID = session.ID

	p.log.Debug(ctx, "upload transmitted, awaiting validation", "name", record.LocalName, "remote_id", session.ID)
	return nil
}

// confirm polls the validation status for a transmitted record and applies
// the state machine transition it calls for.
func (p *UploadPipeline) confirm(ctx context.Context, record *models.UploadRequest) error {
	status, err := p.client.UploadStatus(ctx, record.RemoteID)
	if err != nil {
		return fmt.Errorf("validation poll: %w", err)
	}

	p.log.Debug(ctx, "received validation status", "name", record.LocalName, "status", status)

	switch status {
	case models.StatusSucceeded:
		return p.finish(ctx, record)

	case models.StatusRequested:
		// the service never started processing; abandon the remote record
		// and retransmit from scratch on the next pass
		p.log.Warn(ctx, "upload stuck in requested state, scheduling retransmission", "name", record.LocalName)
		return p.queue.ClearRemoteID(ctx, record.LocalName)

	case models.StatusValidationInProgress:
		return nil

	case models.StatusValidationFailed, models.StatusUnknown:
		return p.handleValidationFailure(ctx, record, status)

	default:
		p.log.Warn(ctx, "unexpected validation status", "name", record.LocalName, "status", status)
		return nil
	}
}

// finish removes the confirmed record and its local file. A file that is
// already gone is logged, not treated as a failure.
func (p *UploadPipeline) finish(ctx context.Context, record *models.UploadRequest) error {
	if err := p.blobs.Delete(record.LocalName); err != nil {
		p.log.Warn(ctx, "could not delete uploaded file", "name", record.LocalName, "error", err)
	}
	if err := p.queue.Delete(ctx, record.LocalName); err != nil {
		return err
	}
	p.log.Info(ctx, "upload confirmed", "name", record.LocalName, "remote_id", record.RemoteID)
	return nil
}

// handleValidationFailure applies the configured policy for terminal
// validation outcomes. The keep policy leaves the record and blob in place
// and surfaces ErrValidationFailed.
func (p *UploadPipeline) handleValidationFailure(ctx context.Context, record *models.UploadRequest, status models.ValidationStatus) error {
	switch p.policy {
	case config.PolicyDrop:
		p.log.Error(ctx, "validation failed, dropping upload", "name", record.LocalName, "status", status)
		if err := p.blobs.Delete(record.LocalName); err != nil {
			p.log.Warn(ctx, "could not delete dropped file", "name", record.LocalName, "error", err)
		}
		return p.queue.Delete(ctx, record.LocalName)

	case config.PolicyRetry:
		p.log.Error(ctx, "validation failed, scheduling retransmission", "name", record.LocalName, "status", status)
		return p.queue.ClearRemoteID(ctx, record.LocalName)

	default: // config.PolicyKeep
		p.log.Error(ctx, "validation failed, keeping record for manual handling",
			"name", record.LocalName, "status", status)
		return fmt.Errorf("%w: %s reported %s", common.ErrValidationFailed, record.LocalName, status)
	}
}

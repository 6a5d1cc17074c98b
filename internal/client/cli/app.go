package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/studybridge/internal/blobstore"
	"github.com/dmitrijs2005/studybridge/internal/client/bridge"
	"github.com/dmitrijs2005/studybridge/internal/client/client"
	"github.com/dmitrijs2005/studybridge/internal/client/config"
	"github.com/dmitrijs2005/studybridge/internal/client/services"
	"github.com/dmitrijs2005/studybridge/internal/logging"

	_ "modernc.org/sqlite"
)

// App bundles the wired services behind the interactive commands.
type App struct {
	config   *config.Config
	session  services.SessionManager
	uploader *services.UploadPipeline
	repos    *client.Repositories
	blobs    blobstore.Store
	log      logging.Logger
	reader   *bufio.Reader
}

func NewApp(cfg *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	blobs, err := blobstore.NewDirStore(cfg.FilesDir)
	if err != nil {
		return nil, err
	}

	apiClient := bridge.NewHTTPClient(cfg.BaseURL, cfg.StudyID, cfg.UserAgent)

	reconciler := services.NewConsentReconciler(apiClient, repos.Profile, logger)
	session := services.NewSessionManager(cfg, apiClient, repos.Profile, reconciler, logger)
	uploader := services.NewUploadPipeline(apiClient, repos.Uploads, blobs, cfg.ValidationFailurePolicy, logger)

	return &App{
		config:   cfg,
		session:  session,
		uploader: uploader,
		repos:    repos,
		blobs:    blobs,
		log:      logger,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Run initializes the session, starts the background queue worker and
// enters the command loop. A failed initialization (typically a transient
// consent upload error) is logged, not fatal; the session itself is loaded
// regardless.
func (a *App) Run(ctx context.Context) {
	defer a.repos.DB.Close()

	if err := a.session.Initialize(ctx); err != nil {
		a.log.Warn(ctx, "initialization incomplete", "error", err)
	}

	go a.StartQueueWorker(ctx, a.config.UploadPollInterval)

	a.Root(ctx)
}

// StartQueueWorker periodically drives the upload queue: pending files are
// transmitted and transmitted ones have their validation status polled. It
// returns when ctx is cancelled.
func (a *App) StartQueueWorker(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.session.IsSignedIn() {
				continue
			}
			if err := a.uploader.ProcessQueue(ctx); err != nil {
				a.log.Warn(ctx, "queue pass failed", "error", err)
			}

		case <-ctx.Done():
			return
		}
	}
}

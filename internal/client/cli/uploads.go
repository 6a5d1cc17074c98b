package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// StageFile copies the file at path into the managed files directory and
// enqueues it for upload. The content type is inferred from the extension,
// falling back to application/octet-stream.
func (a *App) StageFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	localName := filepath.Base(path)
	if err := a.blobs.Write(localName, data); err != nil {
		return err
	}

	request, err := a.uploader.Enqueue(ctx, localName, contentType)
	if err != nil {
		return err
	}

	fmt.Printf("Queued %s (%d bytes) for upload.\n", request.LocalName, request.ContentLength)
	return nil
}

// ListQueue prints the persisted upload queue.
func (a *App) ListQueue(ctx context.Context) error {
	records, err := a.repos.Uploads.List(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("Upload queue is empty.")
		return nil
	}

	for _, r := range records {
		state := "pending"
		if r.Sent() {
			state = fmt.Sprintf("awaiting validation (%s)", r.RemoteID)
		}
		fmt.Printf("%-40s %10d bytes  %s\n", r.LocalName, r.ContentLength, state)
	}
	return nil
}

// SyncNow forces a queue pass instead of waiting for the background worker.
func (a *App) SyncNow(ctx context.Context) error {
	if err := a.uploader.ProcessQueue(ctx); err != nil {
		return err
	}
	fmt.Println("Queue processed.")
	return nil
}

// ShowStatus prints the account and consent state.
func (a *App) ShowStatus(ctx context.Context) error {
	email, err := a.session.UserEmail(ctx)
	if err != nil {
		return err
	}
	if email == "" {
		fmt.Println("No account on this device. Run 'signup' to create one.")
		return nil
	}

	fmt.Println("Email:     ", email)
	fmt.Println("Signed in: ", a.session.IsSignedIn())

	consented, err := a.session.IsConsented(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Consented: ", consented)

	if a.session.IsSignedIn() {
		fmt.Println("Sharing:   ", a.session.SharingScope())
	}
	return nil
}

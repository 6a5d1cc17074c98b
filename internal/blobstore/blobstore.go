// Package blobstore is the byte-oriented storage collaborator of the upload
// pipeline: a directory of flat files addressed by local name. Queued upload
// payloads live here from enqueue until confirmed delivery.
package blobstore

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store reads and writes upload payloads by local name.
type Store interface {
	// Write stores data under name, replacing any previous content.
	Write(name string, data []byte) error

	// Read returns the full content stored under name.
	Read(name string) ([]byte, error)

	// Exists reports whether a blob with the given name is present.
	Exists(name string) bool

	// Size returns the byte length of the stored blob.
	Size(name string) (int64, error)

	// MD5 returns the base64-encoded MD5 digest of the stored blob, the
	// form required by the Content-MD5 header of the blob transfer.
	MD5(name string) (string, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(name string) error
}

// DirStore is a Store rooted at a single directory.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed and returns a store over it.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *DirStore) Write(name string, data []byte) error {
	if err := os.WriteFile(s.path(name), data, 0o660); err != nil {
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	return nil
}

func (s *DirStore) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

func (s *DirStore) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *DirStore) Size(name string) (int64, error) {
	fi, err := os.Stat(s.path(name))
	if err != nil {
		return 0, fmt.Errorf("stat blob %s: %w", name, err)
	}
	return fi.Size(), nil
}

func (s *DirStore) MD5(name string) (string, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return "", fmt.Errorf("open blob %s: %w", name, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest blob %s: %w", name, err)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func (s *DirStore) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}

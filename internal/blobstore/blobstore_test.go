package blobstore

import (
	"crypto/md5"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *DirStore {
	t.Helper()
	s, err := NewDirStore(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	return s
}

func TestDirStore_WriteReadDelete(t *testing.T) {
	s := newStore(t)

	require.False(t, s.Exists("data.json"))
	require.NoError(t, s.Write("data.json", []byte(`{"a":1}`)))
	require.True(t, s.Exists("data.json"))

	got, err := s.Read("data.json")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), got)

	n, err := s.Size("data.json")
	require.NoError(t, err)
	require.Equal(t, int64(7), n)

	require.NoError(t, s.Delete("data.json"))
	require.False(t, s.Exists("data.json"))
}

func TestDirStore_DeleteMissingIsNoop(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Delete("never-written"))
}

func TestDirStore_MD5MatchesContent(t *testing.T) {
	s := newStore(t)
	content := []byte("survey payload bytes")
	require.NoError(t, s.Write("payload.zip", content))

	sum := md5.Sum(content)
	want := base64.StdEncoding.EncodeToString(sum[:])

	got, err := s.MD5("payload.zip")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDirStore_NameIsFlattened(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Write("../escape.bin", []byte("x")))

	_, err := os.Stat(filepath.Join(s.Dir(), "escape.bin"))
	require.NoError(t, err)
}

func TestNewDirStore_FailsOnFileCollision(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "files")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := NewDirStore(path)
	require.Error(t, err)
}

package profile

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE documents (
  name TEXT PRIMARY KEY,
  body BLOB NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestSession_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	// nothing stored yet
	s, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &models.Session{
		Token:        "token-1",
		Consented:    true,
		SharingScope: models.SharingSponsors,
	}
	require.NoError(t, r.SaveSession(ctx, want))

	got, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSession_SaveOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveSession(ctx, &models.Session{Token: "a", Consented: false}))
	require.NoError(t, r.SaveSession(ctx, &models.Session{Token: "a", Consented: true}))

	got, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.True(t, got.Consented)
}

func TestProfile_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p, err := r.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	want := &models.UserProfile{Email: "a@b.c", Name: "Ann", BirthDate: "1990-04-01"}
	require.NoError(t, r.SaveProfile(ctx, want))

	got, err := r.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConsent_LifeCycle(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	has, err := r.HasConsent(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	sig := &models.ConsentSignature{
		Study:         "study-1",
		Name:          "Ann",
		BirthDate:     "1990-04-01",
		ImageData:     "aW1hZ2U=",
		ImageMimeType: "image/png",
		Scope:         models.SharingAll,
	}
	require.NoError(t, r.SaveConsent(ctx, sig))

	has, err = r.HasConsent(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := r.LoadConsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, sig, got)

	require.NoError(t, r.DeleteConsent(ctx))

	has, err = r.HasConsent(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	got, err = r.LoadConsent(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMarkConsented_Atomic(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveSession(ctx, &models.Session{Token: "t", Consented: false}))
	require.NoError(t, r.SaveConsent(ctx, &models.ConsentSignature{Study: "s", Name: "Ann"}))

	require.NoError(t, r.MarkConsented(ctx, &models.Session{Token: "t", Consented: true}))

	s, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.True(t, s.Consented)

	has, err := r.HasConsent(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDocuments_AreIndependent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveSession(ctx, &models.Session{Token: "t"}))
	require.NoError(t, r.SaveProfile(ctx, &models.UserProfile{Email: "a@b.c"}))

	require.NoError(t, r.DeleteConsent(ctx))

	s, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.NotNil(t, s)

	p, err := r.LoadProfile(ctx)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

package auth_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/xeptore/tidewave/auth"
)

func sampleCredentials() auth.Credentials {
	return auth.Credentials{
		TokenType:    "Bearer",
		Token:        "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		CountryCode:  "NL",
		IsPKCE:       true,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := auth.NewFileStore(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)

	want := sampleCredentials()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestBoltStoreRoundTrip(t *testing.T) {
	t.Parallel()

	db, err := bolt.Open(filepath.Join(t.TempDir(), "sessions.db"), 0o600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := auth.NewBoltStore(db, "default")

	_, err = store.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)

	want := sampleCredentials()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	other := auth.NewBoltStore(db, "other")
	_, err = other.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLoadsStoredCredentials(t *testing.T) {
	t.Parallel()

	store := auth.NewFileStore(t.TempDir())
	want := sampleCredentials()
	require.NoError(t, store.Save(want))

	a, err := auth.New(store)
	require.NoError(t, err)
	assert.Equal(t, want, *a.Credentials())
}

func TestNewWithEmptyStore(t *testing.T) {
	t.Parallel()

	a, err := auth.New(auth.NewFileStore(t.TempDir()))
	require.NoError(t, err)
	assert.True(t, a.Credentials().Expired(time.Now()))
}

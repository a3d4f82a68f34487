package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess, "missing file means logged out")

	want := &domain.Session{
		Token:     "abc",
		User:      domain.User{ID: "u1", FullName: "Ada Lovelace", Role: domain.RoleAdmin},
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Clear(), "clearing twice is fine")
}

func TestFileStore_Token(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		session  *domain.Session
		expected string
	}{
		{"no session", nil, ""},
		{"valid", &domain.Session{Token: "tok", ExpiresAt: now.Add(time.Hour)}, "tok"},
		{"no expiry", &domain.Session{Token: "tok"}, "tok"},
		{"expired", &domain.Session{Token: "tok", ExpiresAt: now.Add(-time.Second)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
			store.now = func() time.Time { return now }
			if tt.session != nil {
				require.NoError(t, store.Save(tt.session))
			}

			token, err := store.Token()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestWatch_ReportsLoginAndLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, store, 20*time.Millisecond, nil)
	require.NoError(t, err)

	require.NoError(t, store.Save(&domain.Session{Token: "tok", User: domain.User{ID: "u1"}}))
	select {
	case c := <-changes:
		require.NoError(t, c.Err)
		require.NotNil(t, c.Session)
		assert.Equal(t, "tok", c.Session.Token)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported after login")
	}

	require.NoError(t, store.Clear())
	select {
	case c := <-changes:
		require.NoError(t, c.Err)
		assert.Nil(t, c.Session)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported after logout")
	}

	cancel()
	for range changes {
	}
}

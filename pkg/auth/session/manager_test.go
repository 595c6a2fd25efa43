package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "test:session:access:" + accessID
}

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}
}

func TestGenerateStoresToken(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, token, store.values["test:session:access:access-1"])
}

func TestGenerateRequiresAccessID(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(newFakeStore())
	_, err := mgr.Generate(context.Background(), "  ")
	require.Error(t, err)
}

func TestRotateIssuesNewPairAndInvalidatesOld(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	newAccessID, newToken, err := mgr.Rotate(context.Background(), "access-1", token)
	require.NoError(t, err)
	require.NotEmpty(t, newAccessID)
	require.NotEqual(t, token, newToken)

	_, ok := store.values["test:session:access:access-1"]
	require.False(t, ok, "old session should be deleted")

	ok2, err := mgr.HasSession(context.Background(), newAccessID)
	require.NoError(t, err)
	require.True(t, ok2)
}

func TestRotateRejectsWrongToken(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mgr := newTestManager(store)

	_, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	_, _, err = mgr.Rotate(context.Background(), "access-1", "not-the-token")
	require.True(t, errors.Is(err, ErrInvalidRefreshToken))
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(newFakeStore())
	_, _, err := mgr.Rotate(context.Background(), "missing", "whatever")
	require.True(t, errors.Is(err, ErrInvalidRefreshToken))
}

func TestRevokeAndHasSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mgr := newTestManager(store)

	_, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	ok, err := mgr.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mgr.Revoke(context.Background(), "access-1"))

	ok, err = mgr.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	require.False(t, ok)
}

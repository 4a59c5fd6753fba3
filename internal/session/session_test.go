package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/kinmatch/internal/storage"
	"github.com/naveenspark/kinmatch/pkg/client"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	kv, err := storage.OpenFile(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return NewStore(kv)
}

var mom = domain.User{ID: "u1", Name: "Ana", Email: "a@b.com", Role: domain.RoleMother}

func TestStoreSetAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.SetSession(ctx, "tok", mom))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, mom, got.User)

	u, ok, err := s.User(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleMother, u.Role)
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	s := newStore(t)
	assert.Error(t, s.SetSession(context.Background(), "", mom))
	_, ok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreClearRemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SetSession(ctx, "tok", mom))
	require.NoError(t, s.Clear(ctx))

	_, ok, _ := s.Token(ctx)
	assert.False(t, ok)
	_, ok, _ = s.User(ctx)
	assert.False(t, ok)
}

func TestProviderLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	p := NewProvider(store)

	require.NoError(t, p.Load(ctx))
	assert.False(t, p.Authenticated())
	assert.Nil(t, p.Current())

	require.NoError(t, p.Set(ctx, domain.Session{Token: "tok", User: mom}))
	assert.True(t, p.Authenticated())
	assert.Equal(t, "tok", p.Token())

	// A fresh provider over the same store picks the session up again.
	again := NewProvider(store)
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, "a@b.com", again.Current().User.Email)

	require.NoError(t, p.Logout(ctx))
	assert.False(t, p.Authenticated())
	require.NoError(t, again.Load(ctx))
	assert.Nil(t, again.Current())
}

func TestProviderCurrentIsACopy(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(newStore(t))
	require.NoError(t, p.Set(ctx, domain.Session{Token: "tok", User: mom}))
	p.Current().Token = "mutated"
	assert.Equal(t, "tok", p.Token())
}

func TestProviderIsTokenSource(t *testing.T) {
	var _ client.TokenSource = NewProvider(newStore(t))
}

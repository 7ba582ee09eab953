package identity

import (
	"context"
	"errors"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
)

type failingStore struct {
	getErr error
	setErr error
	sets   int
}

func (s *failingStore) Get(context.Context, string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return "", ErrNotFound
}

func (s *failingStore) Set(context.Context, string, string) error {
	s.sets++
	return s.setErr
}

func (s *failingStore) Close() error { return nil }

func TestSessionID_CreatesAndPersists(t *testing.T) {
	store := NewMemoryStore()
	id := New(store, nil, nil, zap.NewNop()).SessionID(context.Background())

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), cnst.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, id, stored)
}

func TestSessionID_StableAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	s1, err := NewDiskStore(path)
	require.NoError(t, err)
	first := New(s1, nil, nil, zap.NewNop()).SessionID(context.Background())

	s2, err := NewDiskStore(path)
	require.NoError(t, err)
	second := New(s2, nil, nil, zap.NewNop()).SessionID(context.Background())

	assert.Equal(t, first, second)
}

func TestSessionID_MemoizedAndConcurrent(t *testing.T) {
	ident := New(NewMemoryStore(), nil, nil, zap.NewNop())

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = ident.SessionID(context.Background())
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestSessionID_MirrorsCookie(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	site, err := url.Parse("http://localhost:8000")
	require.NoError(t, err)

	id := New(NewMemoryStore(), jar, site, zap.NewNop()).SessionID(context.Background())

	cookies := jar.Cookies(site)
	require.Len(t, cookies, 1)
	assert.Equal(t, cnst.SessionKey, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
}

func TestSessionID_FailSoft(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		store := &failingStore{getErr: errors.New("disk unreadable")}
		ident := New(store, nil, nil, zap.NewNop())

		id := ident.SessionID(context.Background())
		assert.NotEmpty(t, id)
		assert.Equal(t, id, ident.SessionID(context.Background()))
		assert.Zero(t, store.sets)
	})

	t.Run("write failure", func(t *testing.T) {
		store := &failingStore{setErr: errors.New("disk full")}
		ident := New(store, nil, nil, zap.NewNop())

		id := ident.SessionID(context.Background())
		assert.NotEmpty(t, id)
		assert.Equal(t, id, ident.SessionID(context.Background()))
		assert.Equal(t, 1, store.sets)
	})
}

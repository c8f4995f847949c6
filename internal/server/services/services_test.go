package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/sessions"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	queue   string
	payload any
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, name string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, enqueued{queue: name, payload: payload})
	return nil
}

type fixture struct {
	rm       *repomanager.InMemoryRepositoryManager
	mr       *miniredis.Miniredis
	sessions *sessions.Store
	queue    *fakeQueue
	store    *storage.LocalStore
	users    *UserService
	files    *FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	rm := repomanager.NewInMemoryRepositoryManager()
	ss := sessions.NewStore(client, time.Hour)
	q := &fakeQueue{}

	return &fixture{
		rm:       rm,
		mr:       mr,
		sessions: ss,
		queue:    q,
		store:    store,
		users:    NewUserService(nil, rm, ss, q, cfg, logging.Nop{}),
		files:    NewFileService(nil, rm, store, q, logging.Nop{}),
	}
}

type failingStore struct {
	storage.ContentStore
	putErr  error
	deleted []string
}

func (s *failingStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	return s.ContentStore.Put(ctx, name, data)
}

func (s *failingStore) Delete(ctx context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return s.ContentStore.Delete(ctx, path)
}

var errBoom = errors.New("boom")

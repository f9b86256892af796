package session_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Load(ctx context.Context, key string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, key)
}

func (s *SlowStore) Save(ctx context.Context, key string, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, key, sess)
}

func TestManager_LoadAbsentIsIdle(t *testing.T) {
	manager := session.NewManager(memory.NewStore())

	s, err := manager.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, s.IsIdle())
	assert.Equal(t, "nobody", s.Key)
	assert.Empty(t, s.Answers)
}

func TestManager_TransactNoLostUpdates(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	key := "race-test"

	var wg sync.WaitGroup
	writers := 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			err := manager.Transact(ctx, key, func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
				next := s.Snapshot()
				next.Phase = domain.PhaseCollecting
				next.Answers["w"+strconv.Itoa(val)] = "x"
				return next, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, err := manager.Load(ctx, key)
	require.NoError(t, err)
	assert.Len(t, s.Answers, writers, "every read-modify-write must be preserved")
}

func TestManager_TransactIdleDeletes(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	err := manager.Transact(ctx, "k", func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		next := s.Snapshot()
		next.Phase = domain.PhaseCollecting
		return next, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	err = manager.Transact(ctx, "k", func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		return domain.NewSession("k", time.Now()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len(), "an idle session must not be kept in the store")
}

func TestManager_TransactErrorKeepsState(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()
	boom := errors.New("boom")

	err := manager.Transact(ctx, "k", func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		next := s.Snapshot()
		next.Phase = domain.PhaseCollecting
		return next, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestManager_StampsUpdatedAt(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	manager := session.NewManager(memory.NewStore(), session.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	require.NoError(t, manager.Transact(ctx, "k", func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		next := s.Snapshot()
		next.Phase = domain.PhaseConfirming
		return next, nil
	}))

	s, err := manager.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, fixed, s.UpdatedAt)
	assert.Equal(t, fixed, s.CreatedAt)
}

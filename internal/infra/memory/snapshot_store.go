package memory

import (
	"context"
	"sync"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

// SnapshotStore keeps session snapshots in process. Last write wins.
type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]session.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[string]session.Snapshot)}
}

func (s *SnapshotStore) Save(_ context.Context, id string, snap session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[id] = snap
	return nil
}

func (s *SnapshotStore) Load(_ context.Context, id string) (session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	if !ok {
		return session.Snapshot{}, domain.ErrSessionNotFound
	}
	return snap, nil
}

func (s *SnapshotStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/session"
)

// SnapshotStore persists session snapshots as JSON:
// SET quiz:snapshot:{sessionID} {json} EX ttl
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) Save(ctx context.Context, id string, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key(id), data, s.ttl).Err()
}

func (s *SnapshotStore) Load(ctx context.Context, id string) (session.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if isNil(err) {
		return session.Snapshot{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SnapshotStore) key(id string) string {
	return "quiz:snapshot:" + id
}

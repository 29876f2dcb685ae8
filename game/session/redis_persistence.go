package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/wricardo/micromouse/game/service"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "micromouse:session:"

const redisTimeout = 5 * time.Second

// RedisPersistence implements SessionPersistence on a Redis server. Writes take a
// per-session redsync lock so several servers can share one store.
type RedisPersistence struct {
	client        *redis.Client
	locker        *redsync.Redsync
	prefix        string
	ttl           time.Duration
	configManager service.ConfigManager
}

// NewRedisPersistence wraps client. A zero ttl keeps sessions until deleted.
func NewRedisPersistence(client *redis.Client, ttl time.Duration, configManager service.ConfigManager) *RedisPersistence {
	return &RedisPersistence{
		client:        client,
		locker:        redsync.New(goredis.NewPool(client)),
		prefix:        DefaultKeyPrefix,
		ttl:           ttl,
		configManager: configManager,
	}
}

// Ping checks that the server is reachable.
func (rp *RedisPersistence) Ping(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

func (rp *RedisPersistence) key(id string) string { return rp.prefix + id }

// Save stores the session under its key, refreshing the TTL
func (rp *RedisPersistence) Save(session *service.Session) error {
	jsonData, err := encodeSession(session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	mutex := rp.locker.NewMutex(rp.key(session.ID)+":lock", redsync.WithExpiry(redisTimeout))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to lock session %s: %w", session.ID, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	if err := rp.client.Set(ctx, rp.key(session.ID), jsonData, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	jsonData, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decodeSession(jsonData, rp.configManager)
}

// Delete removes a session
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll scans for every stored session ID
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	var ids []string
	iter := rp.client.Scan(ctx, 0, rp.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if strings.HasSuffix(key, ":lock") {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, rp.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session is stored
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

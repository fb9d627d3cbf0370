package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "learning-designer:session:"

// RedisStore keeps sessions in redis with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (store *RedisStore, err error) {
	if addr == "" {
		err = errors.New("redis address is required")
		return store, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = rdb.Ping(pingCtx).Err()
	if err != nil {
		_ = rdb.Close()
		err = errors.Wrapf(err, "redis ping %s failed", addr)
		return store, err
	}

	store = &RedisStore{rdb: rdb, ttl: ttl}
	return store, err
}

// Get loads a session.
func (r *RedisStore) Get(ctx context.Context, id string) (s Session, err error) {
	var data []byte
	data, err = r.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = errors.Wrapf(ErrNotFound, "session %s", id)
			return s, err
		}
		err = errors.Wrap(err, "failed to read session from redis")
		return s, err
	}

	s, err = decode(data)
	return s, err
}

// Save stores the session and refreshes its TTL.
func (r *RedisStore) Save(ctx context.Context, s *Session) (err error) {
	s.UpdatedAt = time.Now()

	var data []byte
	data, err = encode(s)
	if err != nil {
		return err
	}

	err = r.rdb.Set(ctx, redisKeyPrefix+s.ID, data, r.ttl).Err()
	if err != nil {
		err = errors.Wrap(err, "failed to write session to redis")
		return err
	}

	return err
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) (err error) {
	err = r.rdb.Del(ctx, redisKeyPrefix+id).Err()
	if err != nil {
		err = errors.Wrap(err, "failed to delete session from redis")
		return err
	}
	return err
}

// Close releases the redis connection pool.
func (r *RedisStore) Close() (err error) {
	err = r.rdb.Close()
	return err
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a TailoredStore backed by Redis. Records are stored as JSON
// blobs under <keyPrefix>:tailored:<userID>:<jobID>.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a Redis-backed store from configuration.
func NewRedisStore(cfg config.StoreConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
	}
}

func (s *RedisStore) key(userID, jobID string) string {
	return fmt.Sprintf("%s:tailored:%s:%s", s.keyPrefix, userID, jobID)
}

// Get returns the stored record for the key.
func (s *RedisStore) Get(ctx context.Context, userID, jobID string) (*types.TailoredResume, error) {
	data, err := s.client.Get(ctx, s.key(userID, jobID)).Bytes()
	if err == redis.Nil {
		return nil, notFoundError(userID, jobID)
	}
	if err != nil {
		return nil, errors.NewIOError(errors.CodeStoreError,
			"Failed to read tailored resume from Redis", err).
			WithContext("user_id", userID).
			WithContext("job_id", jobID)
	}

	var record types.TailoredResume
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.NewIOError(errors.CodeStoreError,
			"Failed to decode stored tailored resume", err).
			WithContext("user_id", userID).
			WithContext("job_id", jobID)
	}

	return &record, nil
}

// Put stores the record, replacing any existing record for the key.
func (s *RedisStore) Put(ctx context.Context, record *types.TailoredResume) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.NewIOError(errors.CodeStoreError,
			"Failed to encode tailored resume", err)
	}

	if err := s.client.Set(ctx, s.key(record.UserID, record.JobID), data, s.ttl).Err(); err != nil {
		return errors.NewIOError(errors.CodeStoreError,
			"Failed to write tailored resume to Redis", err).
			WithContext("user_id", record.UserID).
			WithContext("job_id", record.JobID)
	}

	return nil
}

// Delete removes the record for the key.
func (s *RedisStore) Delete(ctx context.Context, userID, jobID string) error {
	if err := s.client.Del(ctx, s.key(userID, jobID)).Err(); err != nil {
		return errors.NewIOError(errors.CodeStoreError,
			"Failed to delete tailored resume from Redis", err).
			WithContext("user_id", userID).
			WithContext("job_id", jobID)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Package redisstore persists the game snapshot in Redis under the fixed
// storage key. Useful when several machines on one host should share a
// durable backend.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/config"
	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

// Store is a Redis-backed snapshot store
type Store struct {
	client *redis.Client
	rules  engine.Rules
	logger zerolog.Logger
}

// New connects to Redis and verifies the connection
func New(cfg config.RedisConfig, rules engine.Rules, logger zerolog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client: client,
		rules:  rules,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}, nil
}

// Save writes the snapshot under the fixed storage key, no expiration
func (s *Store) Save(ctx context.Context, snap *engine.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, engine.StorageKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot, returning nil when the key does not exist
func (s *Store) Load(ctx context.Context) (*engine.Snapshot, error) {
	data, err := s.client.Get(ctx, engine.StorageKey).Bytes()
	if err == redis.Nil {
		s.logger.Debug().Msg("No saved snapshot in Redis")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return engine.DecodeSnapshot(data, s.rules)
}

// Clear removes the stored snapshot
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, engine.StorageKey).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

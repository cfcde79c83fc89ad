package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/hypernodes/tracking"
)

// RedisRunStore implements tracking.Store using Redis
type RedisRunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "hypernodes:"
	TTL      time.Duration // Expiration for runs, default 0 (no expiration)
}

// NewRedisRunStore creates a new Redis run store
func NewRedisRunStore(opts RedisOptions) *RedisRunStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "hypernodes:"
	}

	return &RedisRunStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the client
func (s *RedisRunStore) Close() error {
	return s.client.Close()
}

func (s *RedisRunStore) runKey(id string) string {
	return fmt.Sprintf("%srun:%s", s.prefix, id)
}

func (s *RedisRunStore) experimentKey(name string) string {
	return fmt.Sprintf("%sexperiment:%s:runs", s.prefix, name)
}

// Save stores a run and indexes it under its experiment
func (s *RedisRunStore) Save(ctx context.Context, run *tracking.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.runKey(run.ID), data, s.ttl)

	expKey := s.experimentKey(run.Experiment)
	pipe.SAdd(ctx, expKey, run.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, expKey, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// Load retrieves a run by id
func (s *RedisRunStore) Load(ctx context.Context, id string) (*tracking.Run, error) {
	data, err := s.client.Get(ctx, s.runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", tracking.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to load run from redis: %w", err)
	}

	var run tracking.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// List returns the runs of an experiment ordered by start time. Runs that
// expired since they were indexed are skipped.
func (s *RedisRunStore) List(ctx context.Context, experiment string) ([]*tracking.Run, error) {
	ids, err := s.client.SMembers(ctx, s.experimentKey(experiment)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for experiment %s: %w", experiment, err)
	}

	runs := []*tracking.Run{}
	if len(ids) == 0 {
		return runs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.runKey(id)
	}
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	for _, result := range results {
		data, ok := result.(string)
		if !ok {
			continue
		}
		var run tracking.Run
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		runs = append(runs, &run)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs, nil
}

// Delete removes a run and its experiment index entry
func (s *RedisRunStore) Delete(ctx context.Context, id string) error {
	run, err := s.Load(ctx, id)
	if err != nil {
		if errors.Is(err, tracking.ErrRunNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.runKey(id))
	pipe.SRem(ctx, s.experimentKey(run.Experiment), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes all runs of an experiment
func (s *RedisRunStore) Clear(ctx context.Context, experiment string) error {
	expKey := s.experimentKey(experiment)
	ids, err := s.client.SMembers(ctx, expKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get runs for clearing: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.runKey(id))
	}
	pipe.Del(ctx, expKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}

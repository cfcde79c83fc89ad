package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/hypernodes/log"
)

// Cache stores serialized responses by request key.
type Cache interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value
	Set(ctx context.Context, key, value string) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisCacheOptions configuration for the Redis cache
type RedisCacheOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "hypernodes:llm:"
	TTL      time.Duration // Expiration for entries, default 0 (no expiration)
}

// NewRedisCache creates a Redis cache
func NewRedisCache(opts RedisCacheOptions) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "hypernodes:llm:"
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read llm cache: %w", err)
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write llm cache: %w", err)
	}
	return nil
}

// CachedModel memoizes the responses of a model. Cache failures are logged
// and fall through to the model.
type CachedModel struct {
	model  llms.Model
	cache  Cache
	logger log.Logger
}

// NewCachedModel wraps model with cache.
func NewCachedModel(model llms.Model, cache Cache) *CachedModel {
	return &CachedModel{
		model:  model,
		cache:  cache,
		logger: log.GetDefaultLogger(),
	}
}

// WithLogger sets the logger used to report cache failures.
func (m *CachedModel) WithLogger(l log.Logger) *CachedModel {
	m.logger = l
	return m
}

func (m *CachedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	key, err := CacheKey(messages, options...)
	if err != nil {
		return nil, err
	}

	if v, ok, err := m.cache.Get(ctx, key); err != nil {
		m.logger.Warn("llm cache get failed: %v", err)
	} else if ok {
		var contents []string
		if err := json.Unmarshal([]byte(v), &contents); err == nil {
			m.logger.Debug("llm cache hit %s", key[:12])
			resp := &llms.ContentResponse{}
			for _, c := range contents {
				resp.Choices = append(resp.Choices, &llms.ContentChoice{Content: c})
			}
			return resp, nil
		}
		m.logger.Warn("ignoring corrupt llm cache entry %s", key[:12])
	}

	resp, err := m.model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(resp.Choices))
	for i, c := range resp.Choices {
		contents[i] = c.Content
	}
	data, err := json.Marshal(contents)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal llm response: %w", err)
	}
	if err := m.cache.Set(ctx, key, string(data)); err != nil {
		m.logger.Warn("llm cache set failed: %v", err)
	}
	return resp, nil
}

func (m *CachedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

type cacheMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type cacheRequest struct {
	Messages    []cacheMessage `json:"messages"`
	Model       string         `json:"model,omitempty"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
	TopP        float64        `json:"top_p"`
	StopWords   []string       `json:"stop_words,omitempty"`
}

// CacheKey returns the SHA-256 hex digest identifying a request.
func CacheKey(messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	req := cacheRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
		StopWords:   opts.StopWords,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, cacheMessage{Role: string(msg.Role), Text: textOf(msg)})
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

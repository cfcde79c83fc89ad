// Package redis provides a Redis-backed tracking.Store using go-redis.
package redis

// Package postgres provides a PostgreSQL-backed tracking.Store using pgx.
package postgres

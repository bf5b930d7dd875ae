// Package kvstore provides the durable key-value substrate the reminder store
// writes through to. Every backend stores opaque string values under string
// keys; a missing key is reported as absent, never as an error.
package kvstore

import (
	"context"
	"errors"
)

// Driver identifies a concrete backend.
type Driver string

const (
	DriverMemory   Driver = "memory"   // process memory, tests and demos
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverRedis    Driver = "redis"    // Redis server
	DriverS3       Driver = "s3"       // S3 compatible bucket
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a synchronous key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Package slot provides the key-value persistence slot the cart is saved to.
// Each backend stores opaque bytes under a string key.
package slot

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CartKey is the slot the shopper's cart lives under.
const CartKey = "@RocketShoes:cart"

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var ErrUnknownDriver = errors.New("unknown slot driver")

type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Open returns the backend named by driver. dsn is interpreted per driver:
// a directory for file, a database path for sqlite, an address or redis://
// URL for redis, and a connection string for postgres.
func Open(ctx context.Context, driver, dsn string) (Slot, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return OpenFile(dsn)
	case DriverSQLite:
		return OpenSQLite(dsn)
	case DriverRedis:
		return OpenRedis(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

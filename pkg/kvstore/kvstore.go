// Package kvstore is the persistence port for device-local state.
//
// The session store only needs string get/set/remove; any backend that can
// do that satisfies Store. Drivers: memory, file, redis and sql.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/config"
	"github.com/shashiranjanraj/vendordesk/pkg/crypt"
	"github.com/shashiranjanraj/vendordesk/pkg/database"
)

// ErrNotFound is returned by Get when key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Open builds the driver named by SESSION_DRIVER. When APP_KEY is set the
// store is wrapped so values are encrypted at rest.
func Open(ctx context.Context) (Store, error) {
	var (
		s   Store
		err error
	)

	switch driver := config.SessionDriver(); driver {
	case "memory":
		s = NewMemory()
	case "file":
		s, err = NewFile(config.SessionPath())
	case "redis":
		s, err = DialRedis(ctx, config.RedisAddr(), config.RedisPassword())
	case "sql":
		db, dbErr := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
		if dbErr != nil {
			return nil, fmt.Errorf("kvstore: %w", dbErr)
		}
		s, err = NewSQL(db)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if key := config.AppKey(); key != "" {
		c, err := crypt.New(key)
		if err != nil {
			return nil, fmt.Errorf("kvstore: %w", err)
		}
		s = Encrypted(s, c)
	}
	return s, nil
}

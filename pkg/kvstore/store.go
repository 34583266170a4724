// Package kvstore provides the durable key-value slots that hold carts,
// checkout flows and order records.
package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/db"
	"github.com/mkitchen/catering-backend/pkg/redis"
)

// Store is a string key-value store. Get reports absence with ok=false rather
// than an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// FromConfig selects the backend named by the storage driver.
func FromConfig(cfg config.StorageConfig, redisClient *redis.Client, dbClient *db.Client) (Store, error) {
	switch cfg.Normalized() {
	case config.StorageDriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis storage driver requires a redis client")
		}
		return NewRedis(redisClient)
	case config.StorageDriverSQL:
		if dbClient == nil {
			return nil, fmt.Errorf("sql storage driver requires a database client")
		}
		return NewSQL(dbClient.DB())
	case config.StorageDriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", strings.TrimSpace(cfg.Driver))
	}
}

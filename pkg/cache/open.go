package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendNone, BackendFile, BackendRedis, BackendMongo}

// Config selects and configures a cache backend.
type Config struct {
	Backend       string
	Dir           string // file backend
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDatabase string
}

// Open returns the backend named by cfg.Backend. An empty backend means
// the file cache.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache needs a directory")
		}
		return asCache(NewFileCache(cfg.Dir))
	case BackendRedis:
		return asCache(NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}))
	case BackendMongo:
		return asCache(NewMongoCache(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase}))
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want one of %v)", cfg.Backend, Backends)
	}
}

// asCache drops the concrete type without turning a nil pointer into a
// non-nil interface.
func asCache[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend       string
	Dir           string // file
	MemoryEntries int    // memory
	Redis         RedisConfig
	Mongo         MongoConfig
}

// Open creates the backend named by opts.Backend. An empty backend means
// [BackendFile].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory not set")
		}
		return NewFileCache(opts.Dir)
	case BackendMemory:
		return NewMemoryCache(opts.MemoryEntries)
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, opts.Mongo)
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}

package database

import (
	"context"
	"fmt"
	"time"

	"staylane/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
)

// Valkey logical databases, one per cache category so each can be flushed alone.
const (
	GENERAL_CACHE_INDEX = iota // property lookups
	SESSION_CACHE_INDEX        // authenticated users
	PRICING_CACHE_INDEX        // weekly pricing schedules
	EVENTS_CACHE_INDEX         // domain event pub/sub
)

func (c *Cache) slot(index int) (*CacheClient, string) {
	switch index {
	case GENERAL_CACHE_INDEX:
		return &c.General, "General"
	case SESSION_CACHE_INDEX:
		return &c.Session, "Session"
	case PRICING_CACHE_INDEX:
		return &c.Pricing, "Pricing"
	case EVENTS_CACHE_INDEX:
		return &c.Events, "Events"
	}
	return nil, ""
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}
	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)
	log.Info("initializing cache database", "address", address)

	var cache Cache
	for index := GENERAL_CACHE_INDEX; index <= EVENTS_CACHE_INDEX; index++ {
		target, name := cache.slot(index)
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{address},
			SelectDB:    index,
		})
		if err != nil {
			return log.Err("failed to create valkey client", err, "cache", name)
		}
		*target = client
	}
	s.Cache = cache

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, cache)
	}

	return nil
}

func cacheByIndex(index int, cache Cache) (CacheClient, string, bool) {
	target, name := cache.slot(index)
	if target == nil {
		return nil, "", false
	}
	return *target, name, true
}

// clearCacheDB flushes one category on startup, driven by DB_CACHE_RESET.
func clearCacheDB(index int, cache Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")

	client, name, ok := cacheByIndex(index, cache)
	if !ok || client == nil {
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "cache", name)
		return
	}
	log.Info("Cleared cache database", "cache", name)
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const (
	defaultCacheTTL     = time.Hour
	defaultCacheTimeout = 5 * time.Second
)

var errCacheKeyRequired = errors.New("cache key is required")

type KeyType interface {
	string | uuid.UUID
}

// CacheBuilder composes a single valkey command. Over a nil client it is inert:
// Get misses and Set/Delete succeed, so repositories work without a cache.
type CacheBuilder struct {
	client  valkey.Client
	key     string
	payload []byte
	ttl     time.Duration
	ctx     context.Context
	err     error
}

func NewCacheBuilder[K KeyType](client valkey.Client, key K) *CacheBuilder {
	cb := &CacheBuilder{
		client: client,
		ttl:    defaultCacheTTL,
		ctx:    context.Background(),
	}

	switch k := any(key).(type) {
	case string:
		cb.key = k
	case uuid.UUID:
		cb.key = k.String()
	}

	return cb
}

func (cb *CacheBuilder) WithStruct(value any) *CacheBuilder {
	payload, err := json.Marshal(value)
	if err != nil {
		cb.err = fmt.Errorf("failed to marshal cache value for %s: %w", cb.key, err)
		return cb
	}

	cb.payload = payload
	return cb
}

// WithHash namespaces the key, e.g. "weekly_pricing:<propertyID>".
func (cb *CacheBuilder) WithHash(hash string) *CacheBuilder {
	if hash != "" {
		cb.key = hash + ":" + cb.key
	}
	return cb
}

func (cb *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	cb.ttl = ttl
	return cb
}

func (cb *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	cb.ctx = ctx
	return cb
}

func (cb *CacheBuilder) Key() string {
	return cb.key
}

// ready reports whether a command should be sent to valkey.
func (cb *CacheBuilder) ready() (bool, error) {
	if cb.err != nil {
		return false, cb.err
	}
	if cb.key == "" {
		return false, errCacheKeyRequired
	}
	return cb.client != nil, nil
}

func (cb *CacheBuilder) do(build func(valkey.Builder) valkey.Completed) valkey.ValkeyResult {
	ctx := cb.ctx
	cancel := func() {}
	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > defaultCacheTimeout {
		ctx, cancel = context.WithTimeout(ctx, defaultCacheTimeout)
	}
	defer cancel()

	return cb.client.Do(ctx, build(cb.client.B()))
}

func (cb *CacheBuilder) Set() error {
	if cb.err == nil && len(cb.payload) == 0 {
		return fmt.Errorf("no cache value for %q", cb.key)
	}

	send, err := cb.ready()
	if !send {
		return err
	}

	return cb.do(func(b valkey.Builder) valkey.Completed {
		return b.Set().Key(cb.key).Value(string(cb.payload)).Ex(cb.ttl).Build()
	}).Error()
}

// Get decodes the cached value into result and reports whether it was found.
func (cb *CacheBuilder) Get(result any) (bool, error) {
	send, err := cb.ready()
	if !send {
		return false, err
	}

	data, err := cb.do(func(b valkey.Builder) valkey.Completed {
		return b.Get().Key(cb.key).Build()
	}).AsBytes()
	switch {
	case valkey.IsValkeyNil(err):
		return false, nil
	case err != nil:
		return false, err
	case len(data) == 0:
		return false, nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return false, fmt.Errorf("failed to decode cache value for %s: %w", cb.key, err)
	}
	return true, nil
}

func (cb *CacheBuilder) Delete() error {
	send, err := cb.ready()
	if !send {
		return err
	}

	return cb.do(func(b valkey.Builder) valkey.Completed {
		return b.Del().Key(cb.key).Build()
	}).Error()
}

// Package cache provides the key-value cache used for read-through entity
// lookups. Values are stored JSON-encoded; both backends expire entries by TTL
// only. The cache is a non-authoritative mirror of the database and may lag
// behind it until an entry expires.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// DefaultTTL is used when Set is called with a non-positive ttl
const DefaultTTL = 10 * time.Minute

// Cache is implemented by every cache backend
type Cache interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Set stores value under key. A nil value or blank key is ignored and reports false.
	Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	// Get decodes the value under key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Remove(ctx context.Context, key string) error
}

// Key builds the cache key of an entity row
func Key(entity string, id int32) string {
	return fmt.Sprintf("%s:%d", entity, id)
}

// Get is a typed wrapper over Cache.Get. A missing key yields the zero value of T.
func Get[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var value T
	found, err := c.Get(ctx, key, &value)
	if err != nil || !found {
		var zero T
		return zero, false, err
	}
	return value, true, nil
}

// encode serializes value, returning ok=false for values that must not be stored
func encode(key string, value any) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" || isNil(value) {
		return nil, false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, false, fmt.Errorf("encode cache value %s: %w", key, err)
	}
	return data, true, nil
}

func decode(key string, data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode cache value %s: %w", key, err)
	}
	return nil
}

// isNil also catches typed nils such as (*dto.Bank)(nil), which encode as null
func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

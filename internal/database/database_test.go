package database

import (
	"context"
	"testing"

	"staylane/config"
	"staylane/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, SESSION_CACHE_INDEX)
	assert.Equal(t, 2, PRICING_CACHE_INDEX)
	assert.Equal(t, 3, EVENTS_CACHE_INDEX)
}

func TestCacheByIndex(t *testing.T) {
	_, name, ok := cacheByIndex(PRICING_CACHE_INDEX, Cache{})
	assert.True(t, ok)
	assert.Equal(t, "Pricing", name)

	_, _, ok = cacheByIndex(42, Cache{})
	assert.False(t, ok)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.Config{
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "staylane",
		DatabasePassword: "secret",
		DatabaseName:     "staylane",
	})
	assert.Equal(t, "host=db port=5432 user=staylane password=secret dbname=staylane sslmode=disable TimeZone=UTC", dsn)
}

func TestNewFromGorm(t *testing.T) {
	db := NewFromGorm(nil)
	assert.Nil(t, db.SQL)
	assert.Nil(t, db.Cache.General)
}

func TestCacheBuilder_NilClientIsInert(t *testing.T) {
	ctx := context.Background()
	builder := NewCacheBuilder[string](nil, "abc").
		WithHash("weekly_pricing").
		WithContext(ctx)

	assert.Equal(t, "weekly_pricing:abc", builder.Key())

	var out map[string]string
	found, err := builder.Get(&out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, builder.WithStruct(map[string]string{"a": "b"}).Set())
	require.NoError(t, builder.Delete())
}

func TestCacheBuilder_RequiresKeyAndValue(t *testing.T) {
	err := NewCacheBuilder[string](nil, "").WithStruct(1).Set()
	assert.Error(t, err)

	err = NewCacheBuilder[string](nil, "key").Set()
	assert.Error(t, err)

	_, err = NewCacheBuilder[string](nil, "").Get(new(int))
	assert.Error(t, err)
}

func TestCacheBuilder_MarshalErrorSurfaces(t *testing.T) {
	err := NewCacheBuilder[string](nil, "key").WithStruct(make(chan int)).Set()
	assert.ErrorContains(t, err, "failed to marshal")
}

func TestMigrateModels(t *testing.T) {
	sql, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	db := NewFromGorm(sql)
	require.NoError(t, db.MigrateModels())

	for _, model := range Models() {
		assert.True(t, sql.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, sql.Migrator().HasIndex(&models.DateOverride{}, "idx_date_overrides_property_date"))
	assert.True(t, sql.Migrator().HasIndex(&models.Availability{}, "idx_availability_property_date"))
}

package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"staylane/internal/database"
	"staylane/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// TestHelper bundles an isolated, fully migrated in-memory database and a
// fixed clock for repository, service and controller tests.
type TestHelper struct {
	T     *testing.T
	Ctx   context.Context
	DB    database.DB
	Clock utils.FixedClock
}

// DefaultNow is the instant every helper clock starts at: Sunday 2025-06-01 09:00 UTC.
var DefaultNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sql, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open sqlite database")

	sqlDB, err := sql.DB()
	require.NoError(t, err)
	// One connection serialises transactions the way row locks would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.NewFromGorm(sql)
	require.NoError(t, db.MigrateModels(), "failed to migrate test database")

	return &TestHelper{
		T:     t,
		Ctx:   context.Background(),
		DB:    db,
		Clock: utils.FixedClock{At: DefaultNow},
	}
}

// Today is the helper clock's date at midnight UTC.
func (h *TestHelper) Today() time.Time {
	return utils.DateOnly(h.Clock.Now())
}

// Date returns Today shifted by days.
func (h *TestHelper) Date(days int) time.Time {
	return h.Today().AddDate(0, 0, days)
}

// NextWeekday returns the first date strictly after today falling on weekday.
func (h *TestHelper) NextWeekday(weekday time.Weekday) time.Time {
	d := h.Today().AddDate(0, 0, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func (h *TestHelper) Count(model any, query string, args ...any) int64 {
	h.T.Helper()

	var count int64
	q := h.DB.SQL.WithContext(h.Ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(h.T, q.Count(&count).Error)
	return count
}

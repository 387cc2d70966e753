package database

import (
	"staylane/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// Models lists every table owned by the service in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Property{},
		&models.WeeklyPricing{},
		&models.DateOverride{},
		&models.RatePlan{},
		&models.CancellationPolicy{},
		&models.Reservation{},
		&models.Availability{},
		&models.Payout{},
		&models.AuditLogEntry{},
	}
}

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range Models() {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates indexes GORM cannot express through struct tags.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_rate_plans_property_active_priority ON rate_plans(property_id, is_active, priority DESC, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_reservations_property_dates ON reservations(property_id, check_in, check_out)",
		"CREATE INDEX IF NOT EXISTS idx_payouts_status_scheduled ON payouts(status, scheduled_at)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}

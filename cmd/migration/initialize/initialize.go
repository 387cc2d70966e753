package initialize

import (
	"staylane/config"
	"staylane/internal/database"
	. "staylane/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

const systemAdminEmail = "system@staylane.local"

func InitializeTables(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := db.CreateIndexes(); err != nil {
		return log.Err("failed to create indexes", err)
	}

	if err := initializeSystemAdmin(db, log); err != nil {
		return log.Err("failed to initialize system admin", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeSystemAdmin guarantees one admin account exists to bootstrap access.
func initializeSystemAdmin(db database.DB, log logger.Logger) error {
	var count int64
	if err := db.SQL.Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		return log.Err("failed to count admins", err)
	}

	if count > 0 {
		log.Debug("Admin already exists", "count", count)
		return nil
	}

	email := systemAdminEmail
	admin := User{
		FirstName:   "System",
		LastName:    "Admin",
		DisplayName: "System Administrator",
		Email:       &email,
		Role:        RoleAdmin,
		IsActive:    true,
	}
	if err := db.SQL.Create(&admin).Error; err != nil {
		return log.Err("failed to create system admin", err, "email", email)
	}

	log.Info("Created system admin", "userID", admin.ID, "email", email)
	return nil
}

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"staylane/cmd/migration/initialize"
	"staylane/cmd/migration/seed"
	"staylane/config"
	"staylane/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

const (
	MIGRATION_PATH = "cmd/migration/migrations"
	MIGRATION_DB   = "postgres"
)

// migrator bundles what every subcommand needs.
type migrator struct {
	db     database.DB
	config config.Config
	log    logger.Logger
}

func main() {
	log := logger.New("migrations").Function("main")

	cfg, err := config.New()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Er("failed to create database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	m := migrator{db: db, config: cfg, log: logger.New("migrations")}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		err = m.up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps < 1 {
				log.Error("down expects a positive step count", "arg", os.Args[2])
				os.Exit(1)
			}
		}
		err = m.down(steps)
	case "status":
		err = m.status()
	case "seed":
		err = m.seed()
	default:
		log.Error("unknown migration command", "command", command, "expected", "up|down [n]|status|seed")
		os.Exit(1)
	}

	if err != nil {
		log.Er("migration command failed", err, "command", command)
		os.Exit(1)
	}

	log.Info("Migration command complete", "command", command)
}

// up creates the GORM tables, applies the SQL files that build on them and
// then loads the reference data every environment needs.
func (m migrator) up() error {
	log := m.log.Function("up")

	if err := autoMigrate(m.db.SQL, log); err != nil {
		return log.Err("failed to auto migrate", err)
	}

	if _, err := m.execFiles(migrate.Up, 0); err != nil {
		return log.Err("failed to apply sql migrations", err)
	}

	if err := initialize.InitializeTables(m.db, m.config, log); err != nil {
		return log.Err("failed to initialize tables", err)
	}

	return nil
}

func (m migrator) down(steps int) error {
	log := m.log.Function("down")

	applied, err := m.execFiles(migrate.Down, steps)
	if err != nil {
		return log.Err("failed to roll back sql migrations", err, "steps", steps)
	}

	log.Info("Rolled back sql migrations", "requested", steps, "applied", applied)
	return nil
}

func (m migrator) status() error {
	log := m.log.Function("status")

	conn, err := m.openRaw()
	if err != nil {
		return err
	}
	defer conn.Close()

	records, err := migrate.GetMigrationRecords(conn, MIGRATION_DB)
	if err != nil {
		return log.Err("failed to read migration records", err)
	}

	for _, record := range records {
		log.Info("Applied migration", "id", record.Id, "appliedAt", record.AppliedAt)
	}
	log.Info("Migration status", "applied", len(records))
	return nil
}

// seed rebuilds the schema from scratch and loads development fixtures.
func (m migrator) seed() error {
	log := m.log.Function("seed")

	if m.config.Environment == "production" {
		return log.ErrMsg("refusing to seed a production database")
	}

	if err := m.db.SQL.Migrator().DropTable(database.Models()...); err != nil {
		return log.Err("failed to drop tables", err)
	}

	if err := m.db.FlushAllCaches(); err != nil {
		return log.Err("failed to flush cache databases", err)
	}

	if err := m.up(); err != nil {
		return err
	}

	if err := seed.Seed(m.db.SQL, m.config, log); err != nil {
		return log.Err("failed to seed database", err)
	}

	return nil
}

// autoMigrate creates missing tables without foreign keys first so model order
// does not matter, then runs a full AutoMigrate to add the constraints.
func autoMigrate(db *gorm.DB, log logger.Logger) error {
	log = log.Function("autoMigrate")
	models := database.Models()

	db.Config.DisableForeignKeyConstraintWhenMigrating = true
	for _, model := range models {
		if db.Migrator().HasTable(model) {
			continue
		}
		if err := db.Migrator().CreateTable(model); err != nil {
			return log.Err("failed to create table", err, "model", fmt.Sprintf("%T", model))
		}
	}

	db.Config.DisableForeignKeyConstraintWhenMigrating = false
	if err := db.AutoMigrate(models...); err != nil {
		return log.Err("failed to add constraints", err)
	}

	return nil
}

func (m migrator) openRaw() (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		m.config.DatabaseHost,
		m.config.DatabasePort,
		m.config.DatabaseUser,
		m.config.DatabasePassword,
		m.config.DatabaseName,
	)

	conn, err := sql.Open(MIGRATION_DB, dsn)
	if err != nil {
		return nil, m.log.Function("openRaw").Err("failed to open database for migrations", err)
	}
	return conn, nil
}

// execFiles applies the SQL files in MIGRATION_PATH. limit 0 means all pending.
func (m migrator) execFiles(direction migrate.MigrationDirection, limit int) (int, error) {
	log := m.log.Function("execFiles")

	files, err := filepath.Glob(filepath.Join(MIGRATION_PATH, "*.sql"))
	if err != nil {
		return 0, log.Err("failed to list migration files", err)
	}
	if len(files) == 0 {
		log.Info("No migration files found, skipping file-based migrations")
		return 0, nil
	}

	conn, err := m.openRaw()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	source := &migrate.FileMigrationSource{Dir: MIGRATION_PATH}
	applied, err := migrate.ExecMax(conn, MIGRATION_DB, source, direction, limit)
	if err != nil {
		return applied, log.Err("failed to execute migrations", err)
	}

	log.Info("Executed sql migrations", "direction", direction, "count", applied)
	return applied, nil
}

package config

import (
	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

const (
	DefaultAuditRetentionDays     = 365
	DefaultAuditRetentionSchedule = "daily"
)

type Config struct {
	GeneralVersion         string `mapstructure:"GENERAL_VERSION"`
	Environment            string `mapstructure:"ENVIRONMENT"`
	ServerPort             int    `mapstructure:"SERVER_PORT"`
	DatabaseHost           string `mapstructure:"DB_HOST"`
	DatabasePort           int    `mapstructure:"DB_PORT"`
	DatabaseName           string `mapstructure:"DB_NAME"`
	DatabaseUser           string `mapstructure:"DB_USER"`
	DatabasePassword       string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress   string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort      int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset     int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins       string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	JWTIssuer              string `mapstructure:"JWT_ISSUER"`
	SchedulerEnabled       bool   `mapstructure:"SCHEDULER_ENABLED"`
	AuditRetentionDays     int    `mapstructure:"AUDIT_RETENTION_DAYS"`
	AuditRetentionSchedule string `mapstructure:"AUDIT_RETENTION_SCHEDULE"`
}

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS",
		"JWT_SECRET", "JWT_ISSUER",
		"SCHEDULER_ENABLED", "AUDIT_RETENTION_DAYS", "AUDIT_RETENTION_SCHEDULE",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("AUDIT_RETENTION_DAYS", DefaultAuditRetentionDays)
	viper.SetDefault("AUDIT_RETENTION_SCHEDULE", DefaultAuditRetentionSchedule)

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.JWTSecret == "" {
		return log.ErrMsg("Fatal error: JWT_SECRET is required")
	}

	if config.AuditRetentionDays <= 0 {
		return log.Error(
			"Fatal error: AUDIT_RETENTION_DAYS must be positive",
			"days", config.AuditRetentionDays,
		)
	}

	switch config.AuditRetentionSchedule {
	case "daily", "hourly":
	default:
		return log.Error(
			"Fatal error: AUDIT_RETENTION_SCHEDULE must be daily or hourly",
			"schedule", config.AuditRetentionSchedule,
		)
	}

	ConfigInstance = config
	return nil
}

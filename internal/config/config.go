package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	BackendSQL   = "sql"
	BackendMongo = "mongo"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultJWTSecret        = "default_jwt_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string `mapstructure:"PORT"`
	Origin                    string `mapstructure:"ORIGIN"`
	Environment               string `mapstructure:"APP_ENV"`
	LogLevel                  string `mapstructure:"LOG_LEVEL"`
	JWTSecret                 string `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret          string `mapstructure:"JWT_REFRESH_SECRET"`
	JWTExpirationMinutes      int    `mapstructure:"JWT_EXPIRATION_MINUTES"`
	JWTRefreshExpirationHours int    `mapstructure:"JWT_REFRESH_EXPIRATION_HOURS"`
	StorageBackend            string `mapstructure:"STORAGE_BACKEND"`
	RemindersEnabled          bool   `mapstructure:"REMINDERS_ENABLED"`
	ReminderSchedule          string `mapstructure:"REMINDER_SCHEDULE"`
	EnforceStatusOwner        bool   `mapstructure:"ENFORCE_APPOINTMENT_OWNERSHIP"`
	MaxUploadBytes            int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	Database DatabaseConfig `mapstructure:"-"`
	Mongo    MongoConfig    `mapstructure:"-"`
}

// DatabaseConfig holds relational database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// MongoConfig holds document store connection details
type MongoConfig struct {
	URI      string
	Database string
}

var envKeys = []string{
	"PORT", "ORIGIN", "APP_ENV", "LOG_LEVEL",
	"JWT_SECRET", "JWT_REFRESH_SECRET", "JWT_EXPIRATION_MINUTES", "JWT_REFRESH_EXPIRATION_HOURS",
	"STORAGE_BACKEND", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME", "DATABASE_URL",
	"MONGO_URI", "MONGO_DATABASE",
	"REMINDERS_ENABLED", "REMINDER_SCHEDULE", "ENFORCE_APPOINTMENT_OWNERSHIP", "MAX_UPLOAD_BYTES",
}

// LoadConfig loads configuration from the environment and an optional .env file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ORIGIN", "http://localhost:5173")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_REFRESH_SECRET", defaultJWTRefreshSecret)
	v.SetDefault("JWT_EXPIRATION_MINUTES", 15)
	v.SetDefault("JWT_REFRESH_EXPIRATION_HOURS", 168) // 7 days
	v.SetDefault("STORAGE_BACKEND", BackendSQL)
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "medi")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "medi")
	v.SetDefault("REMINDERS_ENABLED", true)
	v.SetDefault("REMINDER_SCHEDULE", "0 8 * * *")
	v.SetDefault("ENFORCE_APPOINTMENT_OWNERSHIP", false)
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// A missing .env is fine, the environment may carry everything.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		Username: v.GetString("DB_USERNAME"),
		Password: v.GetString("DB_PASSWORD"),
		Name:     v.GetString("DB_NAME"),
		DSN:      v.GetString("DATABASE_URL"),
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = cfg.Database.BuildDSN()
	}

	cfg.Mongo = MongoConfig{
		URI:      v.GetString("MONGO_URI"),
		Database: v.GetString("MONGO_DATABASE"),
	}

	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BuildDSN assembles a driver specific connection string from the discrete fields.
func (d DatabaseConfig) BuildDSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Name)
	case DriverSQLite:
		return d.Name + ".db"
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Name)
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQL:
		switch c.Database.Driver {
		case DriverMySQL, DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
		}
	case BackendMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for the mongo backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.JWTExpirationMinutes <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %d", c.JWTExpirationMinutes)
	}
	if c.JWTRefreshExpirationHours <= 0 {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %d", c.JWTRefreshExpirationHours)
	}

	if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || c.JWTRefreshSecret == defaultJWTRefreshSecret) {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

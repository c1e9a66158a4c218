package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// GenConfig holds the code generator defaults applied on import.
type GenConfig struct {
	Author           string
	PackageName      string
	ModuleName       string
	AutoRemovePre    bool
	TablePrefix      []string
	ReservedPrefixes []string
	StagingDir       string
}

type Config struct {
	Port int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	PreviewCacheTTL time.Duration

	AccessTokenSecret []byte
	CORSOrigins       []string
	LogLevel          string

	Gen GenConfig
}

func Load() *Config {
	return &Config{
		Port: getEnvInt("PORT", 8080),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USERNAME", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_DATABASE", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		PreviewCacheTTL: getEnvDuration("PREVIEW_CACHE_TTL", 10*time.Minute),

		AccessTokenSecret: []byte(getEnv("ACCESS_TOKEN_SECRET", "")),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:          getEnv("LOG_LEVEL", "info"),

		Gen: GenConfig{
			Author:           getEnv("GEN_AUTHOR", "admin"),
			PackageName:      getEnv("GEN_PACKAGE_NAME", "admin"),
			ModuleName:       getEnv("GEN_MODULE_NAME", "system"),
			AutoRemovePre:    getEnvBool("GEN_AUTO_REMOVE_PRE", false),
			TablePrefix:      getEnvList("GEN_TABLE_PREFIX", []string{"sys_"}),
			ReservedPrefixes: getEnvList("GEN_RESERVED_PREFIXES", []string{"qrtz_", "gen_"}),
			StagingDir:       getEnv("GEN_STAGING_DIR", os.TempDir()),
		},
	}
}

// DSN builds a postgres:// URL from the DB_* settings.
func (c *Config) DSN() string {
	userInfo := url.UserPassword(c.DBUser, c.DBPassword)
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=%s",
		userInfo.String(),
		c.DBHost,
		c.DBPort,
		url.PathEscape(c.DBName),
		c.DBSSLMode,
	)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("DB_HOST environment variable is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("DB_DATABASE environment variable is required")
	}
	if len(c.AccessTokenSecret) == 0 {
		return fmt.Errorf("ACCESS_TOKEN_SECRET environment variable is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList reads a comma separated list. An explicitly empty variable is not
// distinguishable from an unset one, so both yield the default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

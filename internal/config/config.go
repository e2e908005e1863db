// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for search behavior.
const (
	DefaultCacheCapacity = 32
	DefaultResultLimit   = 10
	MaxResultLimitValue  = 100
	DefaultLoadWorkers   = 4
)

// Config holds all configuration for the searchbox binary.
type Config struct {
	DatasetPaths []string // SEARCHBOX_DATASET, comma-separated JSON files

	CacheCapacity  int           // QUERY_CACHE_CAPACITY, default 32
	ResultLimit    int           // DEFAULT_RESULT_LIMIT, default 10
	MaxResultLimit int           // MAX_RESULT_LIMIT, default 100
	Debounce       time.Duration // DEBOUNCE_MS, default 150ms
	LoadWorkers    int           // LOAD_WORKERS, default 4

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		DatasetPaths: getEnvStringList("SEARCHBOX_DATASET"),

		CacheCapacity:  getEnvInt("QUERY_CACHE_CAPACITY", DefaultCacheCapacity),
		ResultLimit:    getEnvInt("DEFAULT_RESULT_LIMIT", DefaultResultLimit),
		MaxResultLimit: getEnvInt("MAX_RESULT_LIMIT", MaxResultLimitValue),
		Debounce:       getEnvDurationMs("DEBOUNCE_MS", 150),
		LoadWorkers:    getEnvInt("LOAD_WORKERS", DefaultLoadWorkers),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// ClampLimit bounds a caller-requested result limit to the configured
// default and maximum.
func (c *Config) ClampLimit(limit int) int {
	if limit <= 0 {
		return c.ResultLimit
	}
	if limit > c.MaxResultLimit {
		return c.MaxResultLimit
	}
	return limit
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvStringList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/simple-survey/auth"
)

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Config is built once at startup and handed to every component.
type Config struct {
	Port                 int
	DatabaseURL          string
	DatabaseType         string
	AdminToken           string `masq:"secret"`
	HashSalt             string `masq:"secret"`
	SurveyJSONPath       string
	ParticipantsSeedPath string
	AllowResponseUpdates bool
	BaseURL              string
	LogLevel             string
	LogFormat            string
}

// ParseFlags builds the Config from flags, falling back to the environment
// (and a .env file) for anything not given on the command line.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, allowUpdates string

	fs := flag.NewFlagSet("simple-survey", flag.ContinueOnError)

	fs.StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")

	// Network and storage
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Survey content
	fs.StringVar(&cfg.SurveyJSONPath, "survey", "", "Path to the survey definition JSON")
	fs.StringVar(&cfg.ParticipantsSeedPath, "seed", "", "Path to the participants seed JSON")
	fs.StringVar(&allowUpdates, "allow-updates", "", "Allow participants to update a submitted response (true/false)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in survey links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminToken, "admin-token", "", "Admin bearer token (prefer env)")
	fs.StringVar(&cfg.HashSalt, "hash-salt", "", "Salt for hashed IPs and tokens in logs (random per process if unset)")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (auto, text, json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "file:survey.db"
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = DetectDatabaseType(cfg.DatabaseURL)
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	cfg.SurveyJSONPath = firstNonEmpty(cfg.SurveyJSONPath, os.Getenv("SURVEY_JSON_PATH"), "./survey.json")
	cfg.ParticipantsSeedPath = firstNonEmpty(cfg.ParticipantsSeedPath, os.Getenv("PARTICIPANTS_SEED_PATH"), "./participants.json")
	cfg.BaseURL = strings.TrimRight(firstNonEmpty(cfg.BaseURL, os.Getenv("BASE_URL")), "/")
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")
	cfg.LogFormat = firstNonEmpty(cfg.LogFormat, os.Getenv("LOG_FORMAT"), "auto")

	allowUpdates = firstNonEmpty(allowUpdates, os.Getenv("ALLOW_RESPONSE_UPDATES"), "true")
	allow, err := strconv.ParseBool(allowUpdates)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ALLOW_RESPONSE_UPDATES value %q", allowUpdates)
	}
	cfg.AllowResponseUpdates = allow

	// Secret - MUST be provided
	if cfg.AdminToken == "" {
		cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	}
	if cfg.AdminToken == "" {
		return Config{}, errors.New("ADMIN_TOKEN required")
	}

	// Log hashes must never be keyed with the admin secret
	if cfg.HashSalt == "" {
		cfg.HashSalt = os.Getenv("HASH_SALT")
	}
	if cfg.HashSalt == "" {
		salt, err := auth.GenerateID(32)
		if err != nil {
			return Config{}, err
		}
		cfg.HashSalt = salt
	}
	if cfg.HashSalt == cfg.AdminToken {
		return Config{}, errors.New("HASH_SALT must differ from ADMIN_TOKEN")
	}

	return cfg, nil
}

// DetectDatabaseType guesses the driver from the connection string.
func DetectDatabaseType(databaseURL string) string {
	lower := strings.ToLower(databaseURL)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DatabasePostgres
	}
	return DatabaseSQLite
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

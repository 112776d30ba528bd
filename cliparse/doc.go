// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns an immutable Config with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Values are resolved in this order, first match wins:

 1. CLI flags
 2. Environment variables
 3. The .env file (-env-file, missing file ignored)
 4. Defaults

# Config Fields

  - Port (-p, PORT): default 5000
  - DatabaseURL (-d, DATABASE_URL): default file:survey.db
  - DatabaseType (-t, DATABASE_TYPE): sqlite or postgres, detected from the URL
  - AdminToken (-admin-token, ADMIN_TOKEN): required
  - HashSalt (-hash-salt, HASH_SALT): generated when unset
  - SurveyJSONPath (-survey, SURVEY_JSON_PATH): default ./survey.json
  - ParticipantsSeedPath (-seed, PARTICIPANTS_SEED_PATH): default ./participants.json
  - AllowResponseUpdates (-allow-updates, ALLOW_RESPONSE_UPDATES): default true
  - BaseURL (-base-url, BASE_URL): prefix for survey links
  - LogLevel, LogFormat (-log-level, -log-format)

# Validation

ParseFlags returns an error when ADMIN_TOKEN is missing, when PORT or
ALLOW_RESPONSE_UPDATES cannot be parsed, when the database type is
unknown, or when HASH_SALT equals ADMIN_TOKEN.

AdminToken is tagged masq:"secret", so logging the whole Config through
the logging package prints it redacted.
*/
package cliparse

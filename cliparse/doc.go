// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type: sqlite, postgres or mongo
	-jwt-secret   JWT signing secret
	-cors-origin  Allowed CORS origin
	-debug        Debug logging

# Environment Variables

Flags fall back to environment variables, and a .env file is loaded first:

	PORT            → -p            (default 5000)
	DATABASE_URL    → -d            (required)
	DATABASE_TYPE   → -t            (default sqlite)
	JWT_SECRET      → -jwt-secret   (required)
	CORS_ORIGIN     → -cors-origin  (default http://localhost:5173)
	DEBUG           → -debug
	MONGO_DATABASE                  (default quickpoll)
	JWT_EXPIRE                      (default 30d)
	POLL_TTL                        (default 72h)
	SWEEP_INTERVAL                  (default 1h)

Durations use Go syntax ("90m", "72h") or whole days ("30d").
CLI flags take precedence over environment variables.
*/
package cliparse

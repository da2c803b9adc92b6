// Package config provides centralized configuration management for the task
// dashboard. It handles loading configuration from multiple sources, validation,
// and provides a type-safe API for accessing configuration values throughout the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources, later sources winning:
//
//	1. Default values (Default)
//	2. YAML configuration file (config.yaml or TASKDASH_CONFIG)
//	3. A .env file in the working directory, if present
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern TASKDASH_<SECTION>_<FIELD>:
//
//	TASKDASH_SERVER_PORT=8080
//	TASKDASH_DATA_DIR=./data
//	TASKDASH_LOGGING_LEVEL=debug
//	TASKDASH_DASHBOARD_ROLLING_WINDOW=3
//
// # Data Files
//
// The input tables live in a single data directory. DataFiles resolves every
// configured file name against that directory:
//
//	files := cfg.Data.Files()
//	tasksPath := files.Tasks
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

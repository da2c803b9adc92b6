package config

import "time"

// Application constants
const (
	AppName = "Task Dashboard"

	// Environment
	EnvPrefix     = "TASKDASH"
	EnvConfigFile = "TASKDASH_CONFIG"
	DotEnvFile    = ".env"

	// Data file names (relative to the data directory)
	DefaultDataDir          = "data"
	DefaultTasksFile        = "tasks.csv"
	DefaultProjectsFile     = "projects.csv"
	DefaultTeamMembersFile  = "team_members.csv"
	DefaultContentTypesFile = "content_types.csv"
	DefaultMessagesFile     = "messages.csv"
	DefaultTimelinesFile    = "project_timelines.md"
	DefaultLogFile          = "logs/taskdash.log"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File watching
	DefaultWatchDebounce = 500 * time.Millisecond

	// Dashboard defaults
	DefaultRollingWindow    = 3
	DefaultTrendGranularity = "quarter"

	// Log rotation
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 28
)

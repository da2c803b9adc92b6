package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadFrom tests configuration loading from the file and the environment
func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, DefaultDataDir, cfg.Data.Dir)
				assert.Equal(t, DefaultRollingWindow, cfg.Dashboard.RollingWindow)
				assert.Equal(t, "quarter", cfg.Dashboard.TrendGranularity)
			},
		},
		{
			name: "yaml overrides defaults",
			yaml: "server:\n  port: 9090\ndata:\n  dir: /srv/data\ndashboard:\n  rolling_window: 5\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "/srv/data", cfg.Data.Dir)
				assert.Equal(t, 5, cfg.Dashboard.RollingWindow)
				// untouched sections keep defaults
				assert.Equal(t, DefaultTasksFile, cfg.Data.TasksFile)
			},
		},
		{
			name: "env overrides yaml",
			yaml: "server:\n  port: 9090\n",
			env: map[string]string{
				"TASKDASH_SERVER_PORT":                 "7070",
				"TASKDASH_LOGGING_LEVEL":               "debug",
				"TASKDASH_DASHBOARD_TREND_GRANULARITY": "month",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "month", cfg.Dashboard.TrendGranularity)
			},
		},
		{
			name: "comma separated origins from env",
			env: map[string]string{
				"TASKDASH_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"TASKDASH_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "non positive rolling window",
			yaml:    "dashboard:\n  rolling_window: 0\n",
			wantErr: true,
		},
		{
			name:    "unknown granularity",
			env:     map[string]string{"TASKDASH_DASHBOARD_TREND_GRANULARITY": "week"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.yaml != "" {
				path = writeYAML(t, tt.yaml)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestValidate_FilesOutputGetsDefaultPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.Data.Dir = "  " }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestDataConfig_Files(t *testing.T) {
	d := Default().Data
	d.Dir = "fixtures"
	d.MessagesFile = filepath.Join(string(filepath.Separator), "abs", "messages.csv")

	files := d.Files()
	assert.Equal(t, filepath.Join("fixtures", "tasks.csv"), files.Tasks)
	assert.Equal(t, filepath.Join("fixtures", "project_timelines.md"), files.Timelines)
	assert.Equal(t, d.MessagesFile, files.Messages)
	assert.Len(t, files.All(), 6)
}

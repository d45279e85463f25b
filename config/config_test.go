package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, JournalCSV, cfg.Journal.Type)
	assert.True(t, cfg.Report.Advisories)
	assert.False(t, cfg.Report.Org)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "bad log level",
			config: &Config{
				Log:     LogConfig{Level: "loud"},
				Journal: JournalConfig{Type: JournalCSV},
			},
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name: "unknown journal type",
			config: &Config{
				Log:     LogConfig{Level: "info"},
				Journal: JournalConfig{Type: "parquet"},
			},
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name: "sqlite without db path",
			config: &Config{
				Log:     LogConfig{Level: "debug"},
				Journal: JournalConfig{Type: JournalSQLite},
			},
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name: "both without db path",
			config: &Config{
				Log:     LogConfig{Level: "warn"},
				Journal: JournalConfig{Type: JournalBoth, CSVFile: "out.csv"},
			},
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name: "both with db path",
			config: &Config{
				Log:     LogConfig{Level: "error"},
				Journal: JournalConfig{Type: JournalBoth, DBPath: "j.sqlite"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSinkSelection(t *testing.T) {
	t.Parallel()

	assert.True(t, JournalConfig{Type: JournalCSV}.WantsCSV())
	assert.False(t, JournalConfig{Type: JournalCSV}.WantsSQLite())
	assert.True(t, JournalConfig{Type: JournalSQLite}.WantsSQLite())
	assert.False(t, JournalConfig{Type: JournalSQLite}.WantsCSV())
	assert.True(t, JournalConfig{Type: JournalBoth}.WantsCSV())
	assert.True(t, JournalConfig{Type: JournalBoth}.WantsSQLite())
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Journal.Type = JournalBoth
			cfg.Journal.CSVFile = "out.csv"
			cfg.Report.Org = true
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  type: sqlite\n  db_path: runs.sqlite\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, JournalSQLite, cfg.Journal.Type)
	assert.Equal(t, "runs.sqlite", cfg.Journal.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Report.Advisories)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  type: parquet\n"), 0o644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRADELOG_LOG_LEVEL", "debug")
	t.Setenv("TRADELOG_LOG_PRETTY", "false")
	t.Setenv("TRADELOG_JOURNAL_TYPE", "both")
	t.Setenv("TRADELOG_CSV_FILE", "env.csv")
	t.Setenv("TRADELOG_DB_PATH", "env.sqlite")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, JournalBoth, cfg.Journal.Type)
	assert.Equal(t, "env.csv", cfg.Journal.CSVFile)
	assert.Equal(t, "env.sqlite", cfg.Journal.DBPath)
}

func TestApplyEnvDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADELOG_CSV_FILE=from-dotenv.csv\n"), 0o644))
	t.Setenv("TRADELOG_CSV_FILE", "")
	require.NoError(t, os.Unsetenv("TRADELOG_CSV_FILE"))

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "from-dotenv.csv", cfg.Journal.CSVFile)
}

func TestApplyEnvMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0o644))

	err := ApplyEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load .env")
}

func TestApplyEnvRejects(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("TRADELOG_LOG_PRETTY", "maybe")
	assert.Error(t, ApplyEnv(Default()))

	t.Setenv("TRADELOG_LOG_PRETTY", "true")
	t.Setenv("TRADELOG_JOURNAL_TYPE", "parquet")
	assert.Error(t, ApplyEnv(Default()))
}

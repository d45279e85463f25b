package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Journal sink types.
const (
	JournalCSV    = "csv"
	JournalSQLite = "sqlite"
	JournalBoth   = "both"
)

// Config represents the complete tradelog configuration
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Report  ReportConfig  `json:"report" yaml:"report"`
}

// LogConfig controls diagnostic logging on stderr
type LogConfig struct {
	Level  string `json:"level" yaml:"level"` // debug, info, warn, error
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// JournalConfig selects where built journals are written
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "csv", "sqlite" or "both"
	CSVFile string `json:"csv_file,omitempty" yaml:"csv_file,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ReportConfig controls what build prints to stdout
type ReportConfig struct {
	Advisories bool `json:"advisories" yaml:"advisories"`
	Org        bool `json:"org" yaml:"org"`
}

// WantsCSV reports whether the CSV sink is enabled.
func (j JournalConfig) WantsCSV() bool {
	return j.Type == JournalCSV || j.Type == JournalBoth
}

// WantsSQLite reports whether the SQLite sink is enabled.
func (j JournalConfig) WantsSQLite() bool {
	return j.Type == JournalSQLite || j.Type == JournalBoth
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Journal.Type {
	case JournalCSV, JournalSQLite, JournalBoth:
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'both'")
	}
	if c.Journal.WantsSQLite() && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults. An empty CSV file
// name means journal_<log name>.csv next to the working directory.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Journal: JournalConfig{
			Type:   JournalCSV,
			DBPath: "./tradelog.sqlite",
		},
		Report: ReportConfig{
			Advisories: true,
		},
	}
}

// ApplyEnv loads a .env file if one exists and overrides c with any
// TRADELOG_* variables that are set. A .env file that does not parse is an
// error.
func ApplyEnv(c *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v, ok := os.LookupEnv("TRADELOG_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("TRADELOG_LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRADELOG_LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	if v, ok := os.LookupEnv("TRADELOG_JOURNAL_TYPE"); ok {
		c.Journal.Type = v
	}
	if v, ok := os.LookupEnv("TRADELOG_CSV_FILE"); ok {
		c.Journal.CSVFile = v
	}
	if v, ok := os.LookupEnv("TRADELOG_DB_PATH"); ok {
		c.Journal.DBPath = v
	}
	return c.Validate()
}

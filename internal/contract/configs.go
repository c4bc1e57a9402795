package contract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/perfpipe/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 4
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// OutputDirTimeFormat is the suffix layout of the default output directory.
const OutputDirTimeFormat = "20060102_150405"

// configValidate checks struct tags on ConfigRawInput.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	if err := configValidate.RegisterValidation("dbbackend", validateBackendTag); err != nil {
		panic(err)
	}
	if err := configValidate.RegisterValidation("outputmode", validateOutputTag); err != nil {
		panic(err)
	}
}

func validateOutputTag(fl validator.FieldLevel) bool {
	_, ok := schema.ValidOutputModes[schema.OutputMode(fl.Field().String())]
	return ok
}

func validateBackendTag(fl validator.FieldLevel) bool {
	_, ok := schema.ValidDatabaseBackends[schema.DatabaseBackend(fl.Field().String())]
	return ok
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the pipeline.
// This struct is the "final, validated" config.
type Config struct {
	DataDir     string   // Explicit search root; empty means default search paths
	SearchPaths []string // Default search paths walked when DataDir is empty
	OutputDir   string
	DataFile    string // Aggregated JSON document path
	NoHTML      bool
	Mode        schema.RunMode

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output" validate:"outputmode"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision" validate:"min=1,max=4"`
	Width            int    `mapstructure:"width" validate:"gte=0"`
	Color            string `mapstructure:"color"`
	CacheBackend     string `mapstructure:"cache-backend" validate:"dbbackend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend" validate:"omitempty,dbbackend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from runCmd.Flags() and friends ---
	DataDir     string   `mapstructure:"data-dir"`
	OutputDir   string   `mapstructure:"output-dir"`
	DataFile    string   `mapstructure:"data-file"`
	NoHTML      bool     `mapstructure:"no-html"`
	CollectOnly bool     `mapstructure:"collect-only"`
	AnalyzeOnly bool     `mapstructure:"analyze-only"`
	SearchPaths []string `mapstructure:"search-paths"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.SearchPaths != nil {
		clone.SearchPaths = make([]string, len(c.SearchPaths))
		copy(clone.SearchPaths, c.SearchPaths)
	}
	return &clone
}

// DefaultOutputDir returns the timestamped output directory used when none is given.
func DefaultOutputDir(now time.Time) string {
	return "./performance_analysis_" + now.Format(OutputDirTimeFormat)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRunMode(cfg, input); err != nil {
		return err
	}
	if err := processPaths(cfg, input, now); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs normalizes the raw input, checks its tags and copies simple fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	input.Output = strings.ToLower(strings.TrimSpace(input.Output))
	input.CacheBackend = strings.ToLower(strings.TrimSpace(input.CacheBackend))
	input.HistoryBackend = strings.ToLower(strings.TrimSpace(input.HistoryBackend))

	if err := configValidate.Struct(input); err != nil {
		return describeValidationError(err)
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(input.Output)
	cfg.OutputFile = input.OutputFile
	cfg.Precision = input.Precision
	cfg.Width = input.Width
	cfg.NoHTML = input.NoHTML

	return validateBackendConfigs(cfg, input)
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(input.CacheBackend)
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.HistoryBackend = schema.DatabaseBackend(input.HistoryBackend)
	if cfg.HistoryBackend == "" {
		return nil
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processRunMode resolves the phase selection flags.
func processRunMode(cfg *Config, input *ConfigRawInput) error {
	switch {
	case input.CollectOnly && input.AnalyzeOnly:
		return &UsageError{Msg: "cannot specify both --collect-only and --analyze-only"}
	case input.CollectOnly:
		cfg.Mode = schema.CollectOnly
	case input.AnalyzeOnly:
		cfg.Mode = schema.AnalyzeOnly
	default:
		cfg.Mode = schema.FullRun
	}
	return nil
}

// processPaths resolves the data directory, output directory and data file.
func processPaths(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.DataDir = strings.TrimSpace(input.DataDir)

	cfg.SearchPaths = input.SearchPaths
	if len(cfg.SearchPaths) == 0 {
		cfg.SearchPaths = append([]string(nil), schema.DefaultSearchPaths...)
	}

	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir(now)
	}

	cfg.DataFile = strings.TrimSpace(input.DataFile)
	if cfg.DataFile == "" {
		cfg.DataFile = filepath.Join(cfg.OutputDir, schema.DataFileName)
	}
	if !strings.EqualFold(filepath.Ext(cfg.DataFile), ".json") {
		return fmt.Errorf("data file must have a .json extension (received %q)", cfg.DataFile)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// describeValidationError turns validator errors into flag-oriented messages.
func describeValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Output":
		return fmt.Errorf("invalid output format '%v'. must be text, csv, json, parquet", fe.Value())
	case "Precision":
		return fmt.Errorf("precision must be between 1 and %d (received %v)", MaxPrecision, fe.Value())
	case "Width":
		return fmt.Errorf("width cannot be negative (received %v)", fe.Value())
	case "CacheBackend":
		return fmt.Errorf("invalid cache backend '%v'. must be sqlite, mysql, postgresql, none", fe.Value())
	case "HistoryBackend":
		return fmt.Errorf("invalid history backend '%v'. must be sqlite, mysql, postgresql, none", fe.Value())
	}
	return fmt.Errorf("invalid %s: failed %q check", fe.Field(), fe.Tag())
}

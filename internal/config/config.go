// =============================================================================
// TORG12 Parser - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and supplier-specific
// profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (torg12.yaml): Global settings and the recognition
//      vocabulary (tax rates, header wordings, footer labels)
//   2. Supplier Profiles (profiles/*.yaml): Extra header wordings and tax
//      settings for suppliers whose invoices deviate from the standard form
//
// ARCHITECTURE:
//   - A missing main config file is not an error: built-in defaults apply
//   - Values from the file override defaults key by key; lists replace the
//     default list as a whole
//   - Everything is validated on load
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main torg12.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .xls/.xlsx invoices by the batch command.
	// Default: "./input"
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir receives one report per processed invoice.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// InputArchiveDir is where processed invoices are moved.
	// Files are only moved here after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" validate:"required"`

	// OutputArchiveDir is where reports older than a run are archived.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir" validate:"required"`

	// ProfilesDir contains supplier profiles. A missing directory means no
	// profiles.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file that receives a copy of all log entries.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoding.
	// Default: "console"
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat selects the report format: "json", "xml" or "xlsx".
	// Default: "json"
	OutputFormat string `yaml:"output_format" validate:"oneof=json xml xlsx"`

	// OutputNameFormat defines the report file names.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {number}    - Invoice number ("unknown" when missing)
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// The extension of the output format is always appended.
	// Default: "{original}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format" validate:"required"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files parsed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=1,lte=64"`

	// ContinueOnError keeps the batch going when a file fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves processed inputs to InputArchiveDir.
	// Default: true
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// ArchiveInvalid also archives files whose invoice has recorded errors.
	// Default: false
	ArchiveInvalid bool `yaml:"archive_invalid"`

	// ArchiveByDate files archives under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// HTTP SERVER SETTINGS
	// =========================================================================

	Server ServerConfig `yaml:"server"`

	// =========================================================================
	// RECOGNITION SETTINGS
	// =========================================================================

	// Parser holds tax rates and the header vocabulary. Its keys sit at the
	// top level of the file.
	Parser torg12.Config `yaml:",inline"`
}

// ServerConfig configures the HTTP upload endpoint.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8083"
	Addr string `yaml:"addr" validate:"required"`

	// MaxUploadBytes limits the size of an uploaded workbook.
	// Default: 20 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes" validate:"gt=0"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	cfg := &MainConfig{
		ContinueOnError:  true,
		ArchiveOnSuccess: true,
		Parser:           torg12.DefaultConfig(),
	}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A path that does
//     not exist yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "json"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{uuid}"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":8083"
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = 20 << 20
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateMainConfig checks struct tags and then compiles the vocabulary so
// bad patterns are reported at load time.
func validateMainConfig(config *MainConfig) error {
	if err := validate.Struct(config); err != nil {
		return err
	}
	if _, err := torg12.New(config.Parser); err != nil {
		return err
	}
	return nil
}

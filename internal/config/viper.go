// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogConfig controls log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig controls how CSV files are read and written.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// SpecsConfig locates the table specification files.
type SpecsConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// ExtractConfig holds the numeric conventions of the input documents.
type ExtractConfig struct {
	ThousandSeparator string `mapstructure:"thousand_separator" yaml:"thousand_separator"`
	DecimalSeparator  string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
}

// LookupConfig controls the ICTax enrichment step.
type LookupConfig struct {
	URL            string `mapstructure:"url" yaml:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	DelaySeconds   int    `mapstructure:"delay_seconds" yaml:"delay_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// ExportConfig controls the XLSX output.
type ExportConfig struct {
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
	NameWidth int    `mapstructure:"name_width" yaml:"name_width"`
}

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	CSV     CSVConfig     `mapstructure:"csv" yaml:"csv"`
	Specs   SpecsConfig   `mapstructure:"specs" yaml:"specs"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Lookup  LookupConfig  `mapstructure:"lookup" yaml:"lookup"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
}

// LookupTimeout returns the HTTP timeout of the lookup client.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Lookup.TimeoutSeconds) * time.Second
}

// LookupDelay returns the pause enforced between lookup requests.
func (c *Config) LookupDelay() time.Duration {
	return time.Duration(c.Lookup.DelaySeconds) * time.Second
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.funds-xlsx")
	v.AddConfigPath(".funds-xlsx")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("FUNDS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. The lookup endpoint can also come from the unprefixed variable
	if err := v.BindEnv("lookup.url", "ICTAX_URL"); err != nil {
		fmt.Printf("Warning: failed to bind ICTAX_URL environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")

	// Specification defaults
	v.SetDefault("specs.directory", "specs")

	// Extraction defaults match the Swiss convention of the input documents
	v.SetDefault("extract.thousand_separator", "'")
	v.SetDefault("extract.decimal_separator", ".")

	// Lookup defaults
	v.SetDefault("lookup.url", "https://www.ictax.admin.ch/lsi/api/security")
	v.SetDefault("lookup.timeout_seconds", 10)
	v.SetDefault("lookup.delay_seconds", 1)
	v.SetDefault("lookup.enabled", true)

	// Export defaults
	v.SetDefault("export.sheet", "Funds")
	v.SetDefault("export.name_width", 40)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate CSV delimiter
	if utf8.RuneCountInString(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Specs.Directory == "" {
		return fmt.Errorf("specs.directory must not be empty")
	}

	// Separators: decimal is mandatory, thousand may be absent
	if utf8.RuneCountInString(config.Extract.DecimalSeparator) != 1 {
		return fmt.Errorf("extract.decimal_separator must be a single character, got: %s", config.Extract.DecimalSeparator)
	}
	if utf8.RuneCountInString(config.Extract.ThousandSeparator) > 1 {
		return fmt.Errorf("extract.thousand_separator must be empty or a single character, got: %s", config.Extract.ThousandSeparator)
	}
	if config.Extract.ThousandSeparator == config.Extract.DecimalSeparator {
		return fmt.Errorf("extract separators must differ, both are: %s", config.Extract.DecimalSeparator)
	}

	// Validate lookup configuration
	if config.Lookup.TimeoutSeconds < 1 || config.Lookup.TimeoutSeconds > 300 {
		return fmt.Errorf("lookup.timeout_seconds must be between 1 and 300, got: %d", config.Lookup.TimeoutSeconds)
	}
	if config.Lookup.DelaySeconds < 0 || config.Lookup.DelaySeconds > 60 {
		return fmt.Errorf("lookup.delay_seconds must be between 0 and 60, got: %d", config.Lookup.DelaySeconds)
	}

	// Excel caps column widths at 255 characters
	if config.Export.NameWidth < 0 || config.Export.NameWidth > 255 {
		return fmt.Errorf("export.name_width must be between 0 and 255, got: %d", config.Export.NameWidth)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

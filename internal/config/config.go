package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice defaults
	Invoice InvoiceConfig `yaml:"invoice"`

	// Tax estimate settings
	Tax TaxConfig `yaml:"tax"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`

	// User info for invoices
	User UserConfig `yaml:"user"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type InvoiceConfig struct {
	DefaultDueDays      int     `yaml:"default_due_days"`      // Days until invoice due
	DefaultTaxRate      float64 `yaml:"default_tax_rate"`      // Tax rate as decimal (0.0825 = 8.25%)
	DefaultReminderDays int     `yaml:"default_reminder_days"` // Reminder offset before due date
	NumberPrefix        string  `yaml:"number_prefix"`         // Invoice number prefix (e.g., "INV")
	ExportDir           string  `yaml:"export_dir"`            // Directory for CSV exports
}

type TaxConfig struct {
	EstimateRate float64 `yaml:"estimate_rate"` // Flat rate for monthly tax estimates
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type UserConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

// DefaultConfigPath returns ~/.config/bizhaven/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "bizhaven", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "bizhaven", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "bizhaven", "bizhaven.db"),
		},
		Invoice: InvoiceConfig{
			DefaultDueDays:      14,
			DefaultTaxRate:      0.0,
			DefaultReminderDays: 3,
			NumberPrefix:        "INV",
			ExportDir:           filepath.Join(homeDir, ".config", "bizhaven", "exports"),
		},
		Tax: TaxConfig{
			EstimateRate: 0.22,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, exports, etc.)
func (c *Config) EnsureDirectories() error {
	// Create database directory
	dbDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	// Create export directory
	if err := os.MkdirAll(c.Invoice.ExportDir, 0755); err != nil {
		return err
	}

	return nil
}

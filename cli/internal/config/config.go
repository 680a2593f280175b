// Package config loads CLI configuration from config files, the
// environment, and .env files.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the CLI configuration
type Config struct {
	DatabaseURL   string
	LedgerTable   string
	MigrationsDir string
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	// Find home directory
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// Set config file paths
	viper.SetConfigName(".mango")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "mango"))

	// Set environment variable prefix
	viper.SetEnvPrefix("MANGO")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("ledger_table", "mango_migrations")
	viper.SetDefault("migrations_dir", "migrations")

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LedgerTable:   viper.GetString("ledger_table"),
		MigrationsDir: viper.GetString("migrations_dir"),
	}
	if url := viper.GetString("database_url"); cfg.DatabaseURL == "" && url != "" {
		cfg.DatabaseURL = url
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("database_url", cfg.DatabaseURL)
	viper.Set("ledger_table", cfg.LedgerTable)
	viper.Set("migrations_dir", cfg.MigrationsDir)

	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", "mango")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return err
	}

	configFile := filepath.Join(configPath, ".mango.yaml")
	return viper.WriteConfigAs(configFile)
}

/*
Package config loads runtime configuration for the server and CLI.

PURPOSE:
  One place for every tunable: HTTP port, database path, CORS origins, and
  parsing defaults. Resolution order is viper's usual stack - explicit
  config file, then SALESRECON_* environment variables, then defaults -
  so deployments configure via env and developers via a local file.

USAGE:
  cfg, err := config.Load("")           // defaults + env
  cfg, err := config.Load("conf.yaml")  // explicit file

ENVIRONMENT:
  SALESRECON_PORT, SALESRECON_DB_PATH, SALESRECON_CORS_ORIGINS,
  SALESRECON_MAX_SCAN_ROWS
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        int      `mapstructure:"port"`
	DBPath      string   `mapstructure:"db_path"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// MaxScanRows bounds the monthly header scan.
	MaxScanRows int `mapstructure:"max_scan_rows"`
}

// Load resolves configuration from file (optional), environment, and
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "sales.db")
	v.SetDefault("cors_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("max_scan_rows", 15)

	v.SetEnvPrefix("SALESRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

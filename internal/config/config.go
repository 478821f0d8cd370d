package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix = "SHOPCOST"

	defaultDBPath         = "./shopcost.db"
	defaultPort           = "8080"
	defaultEnv            = "dev"
	defaultCurrencySymbol = "₱"
)

// Keys understood by Load. Each maps to SHOPCOST_<KEY> in the environment.
const (
	KeyDBPath         = "db_path"
	KeyPort           = "port"
	KeyEnv            = "env"
	KeyCurrencySymbol = "currency_symbol"
	KeyLibraryFile    = "library_file"
)

// Config holds application configuration sourced from flags and environment variables.
type Config struct {
	DBPath         string
	Port           string
	Env            string
	CurrencySymbol string
	LibraryFile    string
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || strings.EqualFold(c.Env, "dev")
}

// Load reads a local .env file, then resolves every key from v
// (bound flags first, then SHOPCOST_* env vars, then defaults).
func Load(v *viper.Viper) Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("warning: could not read .env: %v", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyDBPath, defaultDBPath)
	v.SetDefault(KeyPort, defaultPort)
	v.SetDefault(KeyEnv, defaultEnv)
	v.SetDefault(KeyCurrencySymbol, defaultCurrencySymbol)

	cfg := Config{
		DBPath:         v.GetString(KeyDBPath),
		Port:           v.GetString(KeyPort),
		Env:            v.GetString(KeyEnv),
		CurrencySymbol: v.GetString(KeyCurrencySymbol),
		LibraryFile:    v.GetString(KeyLibraryFile),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if !cfg.IsDev() && cfg.LibraryFile == "" {
		log.Print("warning: SHOPCOST_LIBRARY_FILE is not set, using built-in presets")
	}

	return cfg
}

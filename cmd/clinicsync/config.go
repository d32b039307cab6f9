// Config loading for the clinicsync CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyBaseURL = "base_url"
	cfgKeyDataDir = "data_dir"

	// Environment variable names for value overrides.
	envBaseURL = "CLINICSYNC_BASE_URL"
	envToken   = "CLINICSYNC_TOKEN"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Clinicsync configuration

# Backend API base URL, e.g. https://clinic.example.com/api
# base_url:

# Data directory for the local store (optional; overridable by --data-dir)
# data_dir:
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper, creating the directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes a commented default config.yaml if absent.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileName+"."+configFileType)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveBaseURL follows the precedence chain:
// --base-url flag > CLINICSYNC_BASE_URL env > config.yaml base_url.
func resolveBaseURL() string {
	if flagBaseURL != "" {
		return flagBaseURL
	}
	if env := os.Getenv(envBaseURL); env != "" {
		return env
	}
	return configBaseURL
}

// resolveToken returns the cached bearer token, if any. Token absence is not
// an error; the server decides what unauthenticated submissions mean.
func resolveToken() string {
	return os.Getenv(envToken)
}

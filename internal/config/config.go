package config

import (
	"os"
	"path/filepath"

	"github.com/pagereaper/pagereaper/internal/utils/logger"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = "pagereaper"
	ConfigFileName = "config.yaml"
)

func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigDirName), nil
}

func GetDefaultStateDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "state"), nil
}

// LoadConfig loads the config from the config file
// If the config file does not exist, it creates a default config and saves it to the config file
func LoadConfig() {
	configPath, err := GetConfigDir()
	if err != nil {
		logger.Error("Error getting config dir: %v", err)
		return
	}
	configFile := filepath.Join(configPath, ConfigFileName)

	if err := os.MkdirAll(configPath, 0755); err != nil {
		logger.Error("Error creating config path: %v", err)
		return
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := Config{
			StallTimeoutSeconds: StallTimeoutSeconds,
			SettleDelaySeconds:  SettleDelaySeconds,
			ItemPauseSeconds:    ItemPauseSeconds,
			MaxScrollRounds:     MaxScrollRounds,
			ScrollIntervalMs:    ScrollIntervalMs,
			StableRounds:        StableRounds,
			Extractor:           DefaultExtractor,
		}

		out, err := yaml.Marshal(defaultConfig)
		if err != nil {
			logger.Error("Error marshaling default config: %v", err)
			return
		}

		if err := os.WriteFile(configFile, out, 0644); err != nil {
			logger.Error("Error writing default config file: %v", err)
			return
		}
	}

	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		logger.Error("Error reading config: %v", err)
		return
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		logger.Error("Error unmarshalling config: %v", err)
		return
	}

	applyGlobals()
}

// SaveConfig saves the config to the config file
func SaveConfig() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	out, err := yaml.Marshal(GlobalConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, out, 0644)
}

// applyGlobals copies non-zero config file values over the package defaults.
// Command-line flags are bound after this and win over both.
func applyGlobals() {
	if GlobalConfig.OutputDir != "" {
		OutputDir = GlobalConfig.OutputDir
	}
	if GlobalConfig.StateDir != "" {
		StateDir = GlobalConfig.StateDir
	}
	if GlobalConfig.StallTimeoutSeconds > 0 {
		StallTimeoutSeconds = GlobalConfig.StallTimeoutSeconds
	}
	if GlobalConfig.SettleDelaySeconds > 0 {
		SettleDelaySeconds = GlobalConfig.SettleDelaySeconds
	}
	if GlobalConfig.ItemPauseSeconds > 0 {
		ItemPauseSeconds = GlobalConfig.ItemPauseSeconds
	}
	if GlobalConfig.MaxScrollRounds > 0 {
		MaxScrollRounds = GlobalConfig.MaxScrollRounds
	}
	if GlobalConfig.ScrollIntervalMs > 0 {
		ScrollIntervalMs = GlobalConfig.ScrollIntervalMs
	}
	if GlobalConfig.StableRounds > 0 {
		StableRounds = GlobalConfig.StableRounds
	}
	if GlobalConfig.Headless {
		Headless = true
	}
	if GlobalConfig.Extractor == (ExtractorConfig{}) {
		GlobalConfig.Extractor = DefaultExtractor
	}
}

// EnsureDirs creates the state and output directories for the current run
func EnsureDirs() error {
	if StateDir == "" {
		defaultDir, err := GetDefaultStateDir()
		if err != nil {
			return err
		}
		StateDir = defaultDir
	}
	if OutputDir == "" {
		OutputDir = "."
	}

	if err := os.MkdirAll(StateDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(OutputDir, 0755)
}

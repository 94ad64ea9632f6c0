// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port            int `mapstructure:"port"`
	CleanupInterval int `mapstructure:"cleanup_interval"` // minutes between maintenance job runs
	Database        struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Lab struct {
		Name    string `mapstructure:"name"`
		Address string `mapstructure:"address"`
	} `mapstructure:"lab"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with an "AGRILAB_" prefix.
	// e.g., AGRILAB_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("AGRILAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("cleanup_interval", 60)
	viper.SetDefault("database.path", "./agrilab.db")
	viper.SetDefault("lab.name", "Agrilab Soil & Water Testing Laboratory")
	viper.SetDefault("lab.address", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Watch re-reads config.yml whenever it changes on disk and hands the
// fresh Config to onChange. Only lab identity fields are safe to change
// at runtime; port and database path require a restart.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("Config file changed: %s", e.Name)
		var config Config
		if err := viper.Unmarshal(&config); err != nil {
			log.Printf("Ignoring config change, unmarshal failed: %v", err)
			return
		}
		onChange(&config)
	})
	viper.WatchConfig()
}

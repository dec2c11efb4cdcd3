package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LibraryConfig holds project-catalog settings.
type LibraryConfig struct {
	Driver string `json:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `json:"path" mapstructure:"path"`     // sqlite file path
}

// TelemetryConfig holds InfluxDB session-metrics settings.
type TelemetryConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// PlaybackConfig holds playback clock settings.
type PlaybackConfig struct {
	TickInterval time.Duration `json:"tickInterval" mapstructure:"tickInterval"`
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("projectsDir", "./projects")

	viper.SetDefault("playback.tickInterval", "200ms")
	viper.SetDefault("autosave.interval", "30s")

	viper.SetDefault("library.driver", "sqlite")
	viper.SetDefault("library.path", "./vodon_library.db")
	viper.SetDefault("library.recentLimit", 20)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "vodon")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.host", "localhost")
	viper.SetDefault("telemetry.port", "8086")
	viper.SetDefault("telemetry.protocol", "http")
	viper.SetDefault("telemetry.token", "")
	viper.SetDefault("telemetry.org", "vodon-metrics")
	viper.SetDefault("telemetry.bucket", "review_sessions")

	viper.SetConfigName("vodon.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetLibraryConfig returns the project-catalog settings.
func GetLibraryConfig() LibraryConfig {
	var cfg LibraryConfig
	if err := viper.UnmarshalKey("library", &cfg); err != nil {
		return LibraryConfig{Driver: "sqlite", Path: "./vodon_library.db"}
	}
	return cfg
}

// GetTelemetryConfig returns the session-metrics settings.
func GetTelemetryConfig() TelemetryConfig {
	var cfg TelemetryConfig
	if err := viper.UnmarshalKey("telemetry", &cfg); err != nil {
		return TelemetryConfig{}
	}
	return cfg
}

// GetPlaybackConfig returns the playback clock settings.
func GetPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		TickInterval: viper.GetDuration("playback.tickInterval"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

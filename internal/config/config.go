package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Browser
	Headless bool

	// Worker pacing (seconds)
	ItemDelaySeconds  int
	VideoDelaySeconds int

	// Download
	DownloadDir string // optional default; settings file takes precedence
	FFmpegPath  string // optional explicit ffmpeg location

	// Paths
	SettingsFile string // $CONFIG_DIR/config.json
	SessionDir   string // $CONFIG_DIR/browser_session

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HEADLESS", true)
	viper.SetDefault("ITEM_DELAY_SECONDS", 1)
	viper.SetDefault("VIDEO_DELAY_SECONDS", 3)

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "fathomarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Browser
		Headless: viper.GetBool("HEADLESS"),

		// Worker pacing
		ItemDelaySeconds:  viper.GetInt("ITEM_DELAY_SECONDS"),
		VideoDelaySeconds: viper.GetInt("VIDEO_DELAY_SECONDS"),

		// Download
		DownloadDir: viper.GetString("DOWNLOAD_DIR"),
		FFmpegPath:  viper.GetString("FFMPEG_PATH"),

		// Paths
		SettingsFile: filepath.Join(configDir, "config.json"),
		SessionDir:   filepath.Join(configDir, "browser_session"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	return config, nil
}

// DefaultDownloadDir returns the fallback downloads directory next to the
// config tree when neither the settings file nor the environment set one.
func (c *Config) DefaultDownloadDir() string {
	return filepath.Join(filepath.Dir(c.SettingsFile), "downloads")
}

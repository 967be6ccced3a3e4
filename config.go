package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library struct {
		Dir          string `mapstructure:"dir"`
		TrackCount   int    `mapstructure:"track_count"`
		AudioPattern string `mapstructure:"audio_pattern"`
		CoverPattern string `mapstructure:"cover_pattern"`
		Concurrency  int    `mapstructure:"concurrency"`
	} `mapstructure:"library"`
	Playback struct {
		ResumeDelayMs int `mapstructure:"resume_delay_ms"`
		TimeUpdateMs  int `mapstructure:"time_update_ms"`
	} `mapstructure:"playback"`
	UI struct {
		Color     string `mapstructure:"color"`
		ColorMode string `mapstructure:"color_mode"`
		MaxWidth  int    `mapstructure:"max_width"`
	} `mapstructure:"ui"`
	Artwork struct {
		Enabled      bool `mapstructure:"enabled"`
		Padding      int  `mapstructure:"padding"`
		WidthPixels  int  `mapstructure:"width_pixels"`
		WidthColumns int  `mapstructure:"width_columns"`
	} `mapstructure:"artwork"`
	Text struct {
		MaxLengthWithArt int `mapstructure:"max_length_with_art"`
		MaxLengthNoArt   int `mapstructure:"max_length_no_art"`
	} `mapstructure:"text"`
	Timing struct {
		UIRefreshMs int `mapstructure:"ui_refresh_ms"`
	} `mapstructure:"timing"`
	Log struct {
		File  string `mapstructure:"file"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Layout returns the static asset layout described by the library section
func (c Config) Layout() AssetLayout {
	return AssetLayout{
		Dir:          c.Library.Dir,
		AudioPattern: c.Library.AudioPattern,
		CoverPattern: c.Library.CoverPattern,
	}
}

// ResumeDelay is the grace period between reloading a track and resuming it
func (c Config) ResumeDelay() time.Duration {
	return time.Duration(c.Playback.ResumeDelayMs) * time.Millisecond
}

// SafeConfig wraps Config with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Config
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.cfg
}

// Set updates the config (thread-safe write)
func (sc *SafeConfig) Set(cfg Config) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}

var config = &SafeConfig{}

// Config file changed notification
type configReloadMsg struct{}

var configChangeChan = make(chan struct{}, 1)

// Watch for config file changes
func watchConfigCmd() tea.Cmd {
	return func() tea.Msg {
		<-configChangeChan
		return configReloadMsg{}
	}
}

// configError describes one invalid configuration value
type configError struct {
	field   string
	message string
}

func (e configError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// isValidColor accepts ANSI codes (0-255) and #RGB / #RRGGBB hex colors
func isValidColor(color string) bool {
	if color == "" {
		return false
	}
	if strings.HasPrefix(color, "#") {
		hex := color[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		for _, c := range hex {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
				return false
			}
		}
		return true
	}
	n, err := strconv.Atoi(color)
	if err != nil || strconv.Itoa(n) != color {
		return false
	}
	return n >= 0 && n <= 255
}

func validateConfig(cfg *Config) []error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, configError{field: field, message: fmt.Sprintf(format, args...)})
	}

	if cfg.Library.Dir == "" {
		add("library.dir", "must not be empty")
	}
	if cfg.Library.TrackCount < 0 || cfg.Library.TrackCount > 999 {
		add("library.track_count", "must be between 0 and 999 (got %d)", cfg.Library.TrackCount)
	}
	if !strings.Contains(cfg.Library.AudioPattern, "%d") {
		add("library.audio_pattern", "must contain %%d (got %q)", cfg.Library.AudioPattern)
	}
	if !strings.Contains(cfg.Library.CoverPattern, "%d") {
		add("library.cover_pattern", "must contain %%d (got %q)", cfg.Library.CoverPattern)
	}
	if cfg.Library.Concurrency < 1 || cfg.Library.Concurrency > 64 {
		add("library.concurrency", "must be between 1 and 64 (got %d)", cfg.Library.Concurrency)
	}

	if cfg.Playback.ResumeDelayMs < 0 || cfg.Playback.ResumeDelayMs > 5000 {
		add("playback.resume_delay_ms", "must be between 0 and 5000 (got %d)", cfg.Playback.ResumeDelayMs)
	}
	if cfg.Playback.TimeUpdateMs < 50 || cfg.Playback.TimeUpdateMs > 5000 {
		add("playback.time_update_ms", "must be between 50 and 5000 (got %d)", cfg.Playback.TimeUpdateMs)
	}

	if !isValidColor(cfg.UI.Color) {
		add("ui.color", "invalid color format '%s'", cfg.UI.Color)
	}
	if cfg.UI.ColorMode != "auto" && cfg.UI.ColorMode != "manual" {
		add("ui.color_mode", "must be 'auto' or 'manual' (got '%s')", cfg.UI.ColorMode)
	}
	if cfg.UI.MaxWidth < 20 || cfg.UI.MaxWidth > 200 {
		add("ui.max_width", "must be between 20 and 200 (got %d)", cfg.UI.MaxWidth)
	}

	if cfg.Artwork.Padding < 0 || cfg.Artwork.Padding >= cfg.UI.MaxWidth {
		add("artwork.padding", "must be between 0 and max_width (got %d)", cfg.Artwork.Padding)
	}
	if cfg.Artwork.WidthPixels < 1 || cfg.Artwork.WidthPixels > 2000 {
		add("artwork.width_pixels", "must be between 1 and 2000 (got %d)", cfg.Artwork.WidthPixels)
	}
	if cfg.Artwork.WidthColumns < 1 || cfg.Artwork.WidthColumns > 100 {
		add("artwork.width_columns", "must be between 1 and 100 (got %d)", cfg.Artwork.WidthColumns)
	}

	if cfg.Text.MaxLengthWithArt < 1 || cfg.Text.MaxLengthWithArt > 200 {
		add("text.max_length_with_art", "must be between 1 and 200 (got %d)", cfg.Text.MaxLengthWithArt)
	}
	if cfg.Text.MaxLengthNoArt < 1 || cfg.Text.MaxLengthNoArt > 200 {
		add("text.max_length_no_art", "must be between 1 and 200 (got %d)", cfg.Text.MaxLengthNoArt)
	}

	if cfg.Timing.UIRefreshMs < 10 || cfg.Timing.UIRefreshMs > 1000 {
		add("timing.ui_refresh_ms", "must be between 10 and 1000 (got %d)", cfg.Timing.UIRefreshMs)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "must be one of debug, info, warn, error (got '%s')", cfg.Log.Level)
	}

	return errs
}

// applyDefaultsForInvalidFields resets every field named in errs to its
// default value
func applyDefaultsForInvalidFields(cfg *Config, errs []error) {
	for _, err := range errs {
		ce, ok := err.(configError)
		if !ok {
			continue
		}
		switch ce.field {
		case "library.dir":
			cfg.Library.Dir = "static"
		case "library.track_count":
			cfg.Library.TrackCount = 9
		case "library.audio_pattern":
			cfg.Library.AudioPattern = "mp3/%d.mp3"
		case "library.cover_pattern":
			cfg.Library.CoverPattern = "img/%d.jpg"
		case "library.concurrency":
			cfg.Library.Concurrency = 4
		case "playback.resume_delay_ms":
			cfg.Playback.ResumeDelayMs = 300
		case "playback.time_update_ms":
			cfg.Playback.TimeUpdateMs = 250
		case "ui.color":
			cfg.UI.Color = "2"
		case "ui.color_mode":
			cfg.UI.ColorMode = "auto"
		case "ui.max_width":
			cfg.UI.MaxWidth = 45
		case "artwork.padding":
			cfg.Artwork.Padding = 16
		case "artwork.width_pixels":
			cfg.Artwork.WidthPixels = 300
		case "artwork.width_columns":
			cfg.Artwork.WidthColumns = 13
		case "text.max_length_with_art":
			cfg.Text.MaxLengthWithArt = 22
		case "text.max_length_no_art":
			cfg.Text.MaxLengthNoArt = 36
		case "timing.ui_refresh_ms":
			cfg.Timing.UIRefreshMs = 100
		case "log.level":
			cfg.Log.Level = "info"
		}
	}

	// Padding depends on max_width, which may just have been reset
	if cfg.Artwork.Padding < 0 || cfg.Artwork.Padding >= cfg.UI.MaxWidth {
		cfg.Artwork.Padding = 16
	}
}

func printConfigWarnings(errs []error) {
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: invalid config %v, using default\n", err)
	}
}

// loadValidatedConfig unmarshals viper state and repairs invalid fields
func loadValidatedConfig() (Config, []error) {
	var cfg Config
	var errs []error
	if err := viper.Unmarshal(&cfg); err != nil {
		errs = append(errs, fmt.Errorf("error parsing config: %w", err))
	}
	invalid := validateConfig(&cfg)
	applyDefaultsForInvalidFields(&cfg, invalid)
	return cfg, append(errs, invalid...)
}

func setConfigDefaults() {
	viper.SetDefault("library.dir", "static")
	viper.SetDefault("library.track_count", 9)
	viper.SetDefault("library.audio_pattern", "mp3/%d.mp3")
	viper.SetDefault("library.cover_pattern", "img/%d.jpg")
	viper.SetDefault("library.concurrency", 4)
	viper.SetDefault("playback.resume_delay_ms", 300)
	viper.SetDefault("playback.time_update_ms", 250)
	viper.SetDefault("ui.color", "2")
	viper.SetDefault("ui.color_mode", "auto")
	viper.SetDefault("ui.max_width", 45)
	viper.SetDefault("artwork.enabled", true)
	viper.SetDefault("artwork.padding", 16)
	viper.SetDefault("artwork.width_pixels", 300)
	viper.SetDefault("artwork.width_columns", 13)
	viper.SetDefault("text.max_length_with_art", 22)
	viper.SetDefault("text.max_length_no_art", 36)
	viper.SetDefault("timing.ui_refresh_ms", 100)
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.level", "info")
}

// initConfig loads defaults, the config file and environment overrides.
// Command-line flags must already be bound to viper.
func initConfig() {
	setConfigDefaults()

	// Set config file location following XDG standard
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configHome = filepath.Join(homeDir, ".config")
		}
	}

	if configHome != "" {
		viper.AddConfigPath(filepath.Join(configHome, "miniplayer"))
	}

	// Environment variable support with MINIPLAYER_ prefix
	viper.SetEnvPrefix("MINIPLAYER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore error if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file found but had errors
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	cfg, errs := loadValidatedConfig()
	printConfigWarnings(errs)
	config.Set(cfg)

	// Watch for config file changes and live reload
	viper.OnConfigChange(func(e fsnotify.Event) {
		newCfg, _ := loadValidatedConfig()
		config.Set(newCfg)
		select {
		case configChangeChan <- struct{}{}:
		default:
			// Channel full, skip notification
		}
	})
	viper.WatchConfig()
}

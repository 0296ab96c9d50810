package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "SPOTLED"

// Source kinds
const (
	SourceSpotify = "spotify"
	SourceMPRIS   = "mpris"
)

// Display drivers
const (
	DriverSSD1306 = "ssd1306"
	DriverPreview = "preview"
)

// Path is the config file given on the command line, empty for the default lookup
type Path string

// AppConfig holds application configuration.
// It is loaded once at startup and never modified afterwards.
type AppConfig struct {
	Log       LogConfig       `mapstructure:"log"`
	Display   DisplayConfig   `mapstructure:"display"`
	Fonts     FontConfig      `mapstructure:"fonts"`
	Animation AnimationConfig `mapstructure:"animation"`
	Polling   PollingConfig   `mapstructure:"polling"`
	Source    SourceConfig    `mapstructure:"source"`
	Spotify   SpotifyConfig   `mapstructure:"spotify"`
	MPRIS     MPRISConfig     `mapstructure:"mpris"`
	Input     InputConfig     `mapstructure:"input"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DisplayConfig describes the pixel display and its output device
type DisplayConfig struct {
	Driver          string        `mapstructure:"driver"`
	Width           int           `mapstructure:"width"`
	Height          int           `mapstructure:"height"`
	I2CBus          string        `mapstructure:"i2c_bus"`
	I2CAddress      uint16        `mapstructure:"i2c_address"`
	PreviewDir      string        `mapstructure:"preview_dir"`
	PreviewScale    int           `mapstructure:"preview_scale"`
	PreviewInterval time.Duration `mapstructure:"preview_interval"`
}

// FontConfig selects the TrueType font and point sizes.
// An empty path selects the built-in bitmap face.
type FontConfig struct {
	Path       string  `mapstructure:"path"`
	TitleSize  float64 `mapstructure:"title_size"`
	ArtistSize float64 `mapstructure:"artist_size"`
	SeekSize   float64 `mapstructure:"seek_size"`
	StatusSize float64 `mapstructure:"status_size"`
}

// AnimationConfig holds tick cadence and scroll/seek geometry
type AnimationConfig struct {
	TickRate         int     `mapstructure:"tick_rate"`
	ScrollLeftSpeed  float64 `mapstructure:"scroll_left_speed"`
	ScrollRightSpeed float64 `mapstructure:"scroll_right_speed"`
	RestTicks        int     `mapstructure:"rest_ticks"`
	SeekPadding      int     `mapstructure:"seek_padding"`
}

// TickInterval returns the time between two render ticks
func (a AnimationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(a.TickRate)
}

// PollingConfig holds poll scheduling and change detection thresholds
type PollingConfig struct {
	MinInterval   time.Duration `mapstructure:"min_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	JumpThreshold time.Duration `mapstructure:"jump_threshold"`
	MaxBackoff    time.Duration `mapstructure:"max_backoff"`
}

// SourceConfig selects the playback source
type SourceConfig struct {
	Kind string `mapstructure:"kind"`
}

// SpotifyConfig holds the Spotify Web API credentials
type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	TokenPath    string `mapstructure:"token_path"`
}

// MPRISConfig selects the MPRIS player, empty for the first one found
type MPRISConfig struct {
	Player string `mapstructure:"player"`
}

// InputConfig describes the rotary encoder used for volume
type InputConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	ClkPin     string        `mapstructure:"clk_pin"`
	DtPin      string        `mapstructure:"dt_pin"`
	Debounce   time.Duration `mapstructure:"debounce"`
	VolumeStep int           `mapstructure:"volume_step"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("display.driver", DriverSSD1306)
	v.SetDefault("display.width", 128)
	v.SetDefault("display.height", 64)
	v.SetDefault("display.i2c_bus", "")
	v.SetDefault("display.i2c_address", 0x3C)
	v.SetDefault("display.preview_dir", "/tmp/spotled")
	v.SetDefault("display.preview_scale", 4)
	v.SetDefault("display.preview_interval", 200*time.Millisecond)

	v.SetDefault("fonts.path", "")
	v.SetDefault("fonts.title_size", 18)
	v.SetDefault("fonts.artist_size", 15)
	v.SetDefault("fonts.seek_size", 10)
	v.SetDefault("fonts.status_size", 12)

	v.SetDefault("animation.tick_rate", 25)
	v.SetDefault("animation.scroll_left_speed", 1)
	v.SetDefault("animation.scroll_right_speed", 2)
	v.SetDefault("animation.rest_ticks", 75)
	v.SetDefault("animation.seek_padding", 35)

	v.SetDefault("polling.min_interval", time.Second)
	v.SetDefault("polling.timeout", 5*time.Second)
	v.SetDefault("polling.jump_threshold", 5*time.Second)
	v.SetDefault("polling.max_backoff", 30*time.Second)

	v.SetDefault("source.kind", SourceSpotify)

	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.redirect_uri", "http://127.0.0.1:8080/callback")
	v.SetDefault("spotify.token_path", "")

	v.SetDefault("mpris.player", "")

	v.SetDefault("input.enabled", false)
	v.SetDefault("input.clk_pin", "GPIO17")
	v.SetDefault("input.dt_pin", "GPIO18")
	v.SetDefault("input.debounce", 100*time.Millisecond)
	v.SetDefault("input.volume_step", 10)
}

// NewAppConfig loads the configuration file (if any), applies SPOTLED_*
// environment overrides and validates the result.
func NewAppConfig(path Path) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(expandPath(string(path)))
	} else {
		v.SetConfigName("spotled")
		v.AddConfigPath("$HOME/.config/spotled")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default file is fine, env and defaults still apply
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Display.PreviewDir = expandPath(cfg.Display.PreviewDir)
	cfg.Fonts.Path = expandPath(cfg.Fonts.Path)
	cfg.Spotify.TokenPath = expandPath(cfg.Spotify.TokenPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *AppConfig) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.Display.Width > 0 && c.Display.Height > 0, "display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	check(c.Display.Driver == DriverSSD1306 || c.Display.Driver == DriverPreview, "unknown display.driver %q", c.Display.Driver)
	check(c.Display.PreviewScale > 0, "display.preview_scale must be positive")
	check(c.Animation.TickRate > 0, "animation.tick_rate must be positive")
	check(c.Animation.ScrollLeftSpeed > 0 && c.Animation.ScrollRightSpeed > 0, "scroll speeds must be positive")
	check(c.Animation.RestTicks >= 0, "animation.rest_ticks must not be negative")
	check(c.Animation.SeekPadding >= 0 && 2*c.Animation.SeekPadding < c.Display.Width,
		"animation.seek_padding %d does not fit a %dpx display", c.Animation.SeekPadding, c.Display.Width)
	check(c.Polling.MinInterval > 0, "polling.min_interval must be positive")
	check(c.Polling.Timeout > 0, "polling.timeout must be positive")
	check(c.Polling.JumpThreshold > 0, "polling.jump_threshold must be positive")
	check(c.Polling.MaxBackoff >= c.Polling.MinInterval, "polling.max_backoff must be at least polling.min_interval")
	check(c.Input.VolumeStep > 0 && c.Input.VolumeStep <= 100, "input.volume_step must be within 1..100")

	switch c.Source.Kind {
	case SourceSpotify:
		check(c.Spotify.ClientID != "" && c.Spotify.ClientSecret != "", "spotify.client_id and spotify.client_secret are required")
	case SourceMPRIS:
	default:
		check(false, "unknown source.kind %q", c.Source.Kind)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LogSummary writes the effective configuration, without secrets
func (c *AppConfig) LogSummary(logger *zap.Logger) {
	logger.Info("Configuration loaded",
		zap.String("source", c.Source.Kind),
		zap.String("driver", c.Display.Driver),
		zap.Int("width", c.Display.Width),
		zap.Int("height", c.Display.Height),
		zap.Int("tickRate", c.Animation.TickRate),
		zap.Duration("minPollInterval", c.Polling.MinInterval),
		zap.Bool("encoder", c.Input.Enabled))
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

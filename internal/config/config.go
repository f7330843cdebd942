// Package config loads viewer settings from speedr.yaml and SPEEDR_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/image/colornames"

	"github.com/taigrr/speedr/pkg/math3d"
)

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config holds the viewer settings.
type Config struct {
	Width      int     `mapstructure:"width"`  // Window width in pixels
	Height     int     `mapstructure:"height"` // Window height in pixels
	FPS        int     `mapstructure:"fps"`
	FOV        float64 `mapstructure:"fov"` // Vertical field of view in degrees
	Background string  `mapstructure:"background"`
	Model      string  `mapstructure:"model"`
	Texture    string  `mapstructure:"texture"`
	Particles  int     `mapstructure:"particles"`
	Culling    bool    `mapstructure:"culling"`
	LogLevel   string  `mapstructure:"log_level"`
	LogFile    string  `mapstructure:"log_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("width", 800)
	v.SetDefault("height", 600)
	v.SetDefault("fps", 60)
	v.SetDefault("fov", 60.0)
	v.SetDefault("background", "#1e1e28")
	v.SetDefault("model", "")
	v.SetDefault("texture", "")
	v.SetDefault("particles", 256)
	v.SetDefault("culling", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads speedr.yaml from dir if it exists, then applies environment
// overrides such as SPEEDR_FPS or SPEEDR_LOG_LEVEL.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("speedr")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("SPEEDR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	case c.FOV <= 0 || c.FOV >= 180:
		return fmt.Errorf("%w: fov %v", ErrInvalid, c.FOV)
	case c.Particles < 0:
		return fmt.Errorf("%w: particles %d", ErrInvalid, c.Particles)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	return nil
}

// FOVRadians returns the field of view for the camera.
func (c *Config) FOVRadians() float64 {
	return math3d.DegToRad(c.FOV)
}

// BackgroundColor parses Background as a hex color ("#rrggbb") or an SVG
// color name such as "midnightblue".
func (c *Config) BackgroundColor() (math3d.Color, error) {
	name := strings.ToLower(strings.TrimSpace(c.Background))
	if rgba, ok := colornames.Map[name]; ok {
		return math3d.ColorFromRGBA(rgba), nil
	}
	col, err := math3d.ParseHex(name)
	if err != nil {
		return math3d.Color{}, fmt.Errorf("%w: background %q", ErrInvalid, c.Background)
	}
	return col, nil
}

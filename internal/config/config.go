// Package config loads syncalign's pipeline configuration, per spec §5
// "Configuration & I/O". It follows dbehnke-dmr-nexus's pkg/config
// pattern: viper defaults + YAML file + environment variables, with
// pflag wired in so CLI flags take precedence, then validated once
// before use.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config mirrors spec §5's parameter block.
type Config struct {
	Audio    AudioConfig    `mapstructure:"audio"`
	Text     TextConfig     `mapstructure:"text"`
	DTW      DTWConfig      `mapstructure:"dtw"`
	Boundary BoundaryConfig `mapstructure:"boundary"`
	SyncMap  SyncMapConfig  `mapstructure:"syncmap"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AudioConfig holds the head/tail detection windows. MFCC parameters are
// not configurable; the pipeline always extracts with mfcc.Default().
type AudioConfig struct {
	DetectHeadMin float64 `mapstructure:"detect_head_min"`
	DetectHeadMax float64 `mapstructure:"detect_head_max"`
	DetectTailMin float64 `mapstructure:"detect_tail_min"`
	DetectTailMax float64 `mapstructure:"detect_tail_max"`
}

// TextConfig carries text-fragment parsing/language options.
type TextConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

// DTWConfig configures the banded DTW aligner.
type DTWConfig struct {
	MarginSeconds float64 `mapstructure:"margin_seconds"`
}

// BoundaryConfig selects the boundary-adjustment policy.
type BoundaryConfig struct {
	Algorithm string  `mapstructure:"algorithm"` // NONE, AUTO, AFTER_CURRENT, ...
	Delta     float64 `mapstructure:"delta"`
	Percent   float64 `mapstructure:"percent"`
	Rate      float64 `mapstructure:"rate"`
}

// SyncMapConfig selects head/tail output handling.
type SyncMapConfig struct {
	HeadTailFormat string `mapstructure:"head_tail_format"` // ADD, STRETCH, HIDDEN
}

// LoggingConfig configures charmbracelet/log.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load reads configFile (if non-empty), overlays environment variables
// prefixed SYNCALIGN_, overlays flags, unmarshals into Config, and
// validates the result.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("syncalign")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/syncalign")
	}

	v.SetEnvPrefix("SYNCALIGN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("audio.detect_head_min", 0.0)
	v.SetDefault("audio.detect_head_max", 10.0)
	v.SetDefault("audio.detect_tail_min", 0.0)
	v.SetDefault("audio.detect_tail_max", 10.0)

	v.SetDefault("text.default_language", "eng")

	v.SetDefault("dtw.margin_seconds", 60.0)

	v.SetDefault("boundary.algorithm", "AUTO")
	v.SetDefault("boundary.delta", 0.0)
	v.SetDefault("boundary.percent", 50.0)
	v.SetDefault("boundary.rate", 21.0)

	v.SetDefault("syncmap.head_tail_format", "HIDDEN")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate rejects configurations spec §9's Open Questions resolved as
// hard errors: an inverted detect_tail window can never produce a valid
// tail search.
func validate(c *Config) error {
	if c.Audio.DetectTailMin > c.Audio.DetectTailMax {
		return fmt.Errorf("audio.detect_tail_min (%v) > audio.detect_tail_max (%v)",
			c.Audio.DetectTailMin, c.Audio.DetectTailMax)
	}
	if c.Audio.DetectHeadMin > c.Audio.DetectHeadMax {
		return fmt.Errorf("audio.detect_head_min (%v) > audio.detect_head_max (%v)",
			c.Audio.DetectHeadMin, c.Audio.DetectHeadMax)
	}
	switch c.Boundary.Algorithm {
	case "NONE", "AUTO", "AFTER_CURRENT", "BEFORE_NEXT", "OFFSET", "PERCENT", "RATE", "RATE_AGGRESSIVE":
	default:
		return fmt.Errorf("boundary.algorithm: unknown value %q", c.Boundary.Algorithm)
	}
	switch c.SyncMap.HeadTailFormat {
	case "ADD", "STRETCH", "HIDDEN":
	default:
		return fmt.Errorf("syncmap.head_tail_format: unknown value %q", c.SyncMap.HeadTailFormat)
	}
	return nil
}

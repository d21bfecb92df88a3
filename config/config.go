package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log   Log   `yaml:"log"`
	Tidal Tidal `yaml:"tidal"`
}

func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			conf := &Config{} //nolint:exhaustruct
			conf.setDefaults()

			return conf, conf.validate()
		}

		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var conf Config
	if err := yaml.Unmarshal(content, &conf); nil != err {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	conf.setDefaults()
	if err := conf.validate(); nil != err {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("log", c.Log.ToDict()).
		Dict("tidal", c.Tidal.ToDict())
}

func (c *Config) setDefaults() {
	c.Log.setDefaults()
	c.Tidal.setDefaults()
}

func (c *Config) validate() error {
	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	if err := c.Tidal.validate(); nil != err {
		return fmt.Errorf("tidal config validation failed: %v", err)
	}

	return nil
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "auto"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: trace, debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty", "auto"}, c.Format) {
		return fmt.Errorf("format must be 'json', 'pretty', or 'auto', got: %s", c.Format)
	}

	return nil
}

type Tidal struct {
	Quality      string        `yaml:"quality"`
	VideoQuality string        `yaml:"video_quality"`
	ItemLimit    int           `yaml:"item_limit"`
	CredsDir     string        `yaml:"creds_dir"`
	Timeouts     TidalTimeouts `yaml:"timeouts"`
}

func (c *Tidal) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("quality", c.Quality).
		Str("video_quality", c.VideoQuality).
		Int("item_limit", c.ItemLimit).
		Str("creds_dir", c.CredsDir).
		Dict("timeouts", c.Timeouts.ToDict())
}

const maxItemLimit = 10_000

func (c *Tidal) setDefaults() {
	if c.Quality == "" {
		c.Quality = "LOSSLESS"
	}

	if c.VideoQuality == "" {
		c.VideoQuality = "HIGH"
	}

	if c.ItemLimit == 0 {
		c.ItemLimit = 1000
	}

	if c.ItemLimit > maxItemLimit {
		c.ItemLimit = maxItemLimit
	}

	if c.CredsDir == "" {
		c.CredsDir = "./creds"
	}

	c.Timeouts.setDefaults()
}

func (c *Tidal) validate() error {
	if !slices.Contains([]string{"LOW", "HIGH", "LOSSLESS", "HI_RES_LOSSLESS"}, c.Quality) {
		return fmt.Errorf(
			"quality must be one of: LOW, HIGH, LOSSLESS, HI_RES_LOSSLESS, got: %s",
			c.Quality,
		)
	}

	if !slices.Contains([]string{"AUDIO_ONLY", "LOW", "MEDIUM", "HIGH"}, c.VideoQuality) {
		return fmt.Errorf(
			"video_quality must be one of: AUDIO_ONLY, LOW, MEDIUM, HIGH, got: %s",
			c.VideoQuality,
		)
	}

	if c.ItemLimit < 1 {
		return errors.New("item_limit must be positive")
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	return nil
}

type TidalTimeouts struct {
	Request     int `yaml:"request"`
	Auth        int `yaml:"auth"`
	GetStream   int `yaml:"get_stream"`
	GetPage     int `yaml:"get_page"`
	GetPaged    int `yaml:"get_paged"`
	EditRequest int `yaml:"edit_request"`
}

func (c *TidalTimeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("request", c.Request).
		Int("auth", c.Auth).
		Int("get_stream", c.GetStream).
		Int("get_page", c.GetPage).
		Int("get_paged", c.GetPaged).
		Int("edit_request", c.EditRequest)
}

func (c *TidalTimeouts) setDefaults() {
	if c.Request == 0 {
		c.Request = 5
	}

	if c.Auth == 0 {
		c.Auth = 5
	}

	if c.GetStream == 0 {
		c.GetStream = 5
	}

	if c.GetPage == 0 {
		c.GetPage = 10
	}

	if c.GetPaged == 0 {
		c.GetPaged = 10
	}

	if c.EditRequest == 0 {
		c.EditRequest = 10
	}
}

func (c *TidalTimeouts) validate() error {
	for name, v := range map[string]int{
		"request":      c.Request,
		"auth":         c.Auth,
		"get_stream":   c.GetStream,
		"get_page":     c.GetPage,
		"get_paged":    c.GetPaged,
		"edit_request": c.EditRequest,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	return nil
}

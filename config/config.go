package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	DefaultGarAlignment = 4
	DefaultWebAddr      = ":8000"
	DefaultLogLevel     = "info"
)

type LogConfig struct {
	Level string `toml:"level"`
}

type StringsConfig struct {
	Encoding string `toml:"encoding"`
}

type GarConfig struct {
	// Data alignment of files in created archives
	Alignment int `toml:"alignment"`
}

type WebConfig struct {
	Addr string `toml:"addr"`
	Dir  string `toml:"dir"`
	Data string `toml:"data"`
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Strings StringsConfig `toml:"strings"`
	Gar     GarConfig     `toml:"gar"`
	Web     WebConfig     `toml:"web"`
}

func Default() Config {
	return Config{
		Log:     LogConfig{Level: DefaultLogLevel},
		Strings: StringsConfig{Encoding: DefaultEncoding},
		Gar:     GarConfig{Alignment: DefaultGarAlignment},
		Web:     WebConfig{Addr: DefaultWebAddr, Data: "web"},
	}
}

// Load reads toml config on top of defaults. Empty path means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return Config{}, errors.Errorf("Unknown keys in config %q: %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "Invalid config %q", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if a := c.Gar.Alignment; a <= 0 || a&(a-1) != 0 {
		return errors.Errorf("gar.alignment must be power of two, got %d", a)
	}
	return nil
}

// Apply pushes process-wide settings (string encoding) from config
func (c *Config) Apply() error {
	return SetEncoding(c.Strings.Encoding)
}

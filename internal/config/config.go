// Package config implements TOML config file handling for the localizethat
// CLI.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the parsed configuration.
type Config struct {
	DB     DbConfig     `toml:"database"`
	Engine EngineConfig `toml:"engine"`
}

// DbConfig contains SQLite database configuration.
type DbConfig struct {
	// Path to the database file.
	File string `toml:"file"`
}

// EngineConfig tunes the synchronization engines.
type EngineConfig struct {
	// DefaultLocale is the project's source-of-truth language code.
	DefaultLocale string `toml:"default_locale"`
}

func (c *Config) valid() error {
	if len(c.DB.File) == 0 {
		return errors.New("config: missing database.file value")
	}
	if len(c.Engine.DefaultLocale) == 0 {
		return errors.New("config: missing engine.default_locale value")
	}
	return nil
}

// Default returns a Config with usable default values.
func Default() Config {
	return Config{
		DB:     DbConfig{File: filepath.FromSlash("./localizethat.db")},
		Engine: EngineConfig{DefaultLocale: "en-US"},
	}
}

// Load reads config from a TOML file and checks its validity. A missing file
// is not an error; defaults apply.
func Load(file string) (Config, error) {
	conf := Default()
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return conf, nil
	}
	if _, err := toml.DecodeFile(file, &conf); err != nil {
		return conf, err
	}
	if err := conf.valid(); err != nil {
		return conf, err
	}
	return conf, nil
}

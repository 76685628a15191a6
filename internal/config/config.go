package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration shared by the server and CLI
type Config struct {
	SettingsPath       string `yaml:"settings_path"`
	DBPath             string `yaml:"db_path"`
	ListenAddr         string `yaml:"listen_addr"`
	AutosaveEveryTicks int    `yaml:"autosave_every_ticks"`
	LogColor           *bool  `yaml:"log_color"`
}

func Default() Config {
	color := true
	return Config{
		SettingsPath:       "data/settings.json",
		DBPath:             "tycoon.db",
		ListenAddr:         ":8080",
		AutosaveEveryTicks: 10,
		LogColor:           &color,
	}
}

// Load reads a YAML config file. Fields left empty keep their defaults.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	c.merge(file)
	if c.AutosaveEveryTicks < 0 {
		return c, fmt.Errorf("%s: autosave_every_ticks must be >= 0", path)
	}
	return c, nil
}

// merge copies every non-zero field of o into c
func (c *Config) merge(o Config) {
	if o.SettingsPath != "" {
		c.SettingsPath = o.SettingsPath
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.ListenAddr != "" {
		c.ListenAddr = o.ListenAddr
	}
	if o.AutosaveEveryTicks != 0 {
		c.AutosaveEveryTicks = o.AutosaveEveryTicks
	}
	if o.LogColor != nil {
		c.LogColor = o.LogColor
	}
}

// ColorEnabled reports whether coloured output is wanted
func (c Config) ColorEnabled() bool {
	return c.LogColor == nil || *c.LogColor
}

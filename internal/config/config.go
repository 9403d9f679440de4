package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	StaticDir string `yaml:"static_dir" json:"static_dir"`
}

type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8321"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "static"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/tasks.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load reads a yaml config file. A missing file is not an error: defaults
// apply, so the CLI works without any config at all.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.ApplyDefaults()
			return &r, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}

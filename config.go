package main

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	defaultAddr              = ":8080"
	defaultUploadsPerMinute  = 5
	defaultCommandsPerSecond = 60
)

// Config is the server configuration, read from an optional TOML file and
// then overridden by the environment.
type Config struct {
	Addr      string       `toml:"addr"`
	PuzzleDir string       `toml:"puzzle_dir"`
	GCP       GCPConfig    `toml:"gcp"`
	Limits    LimitsConfig `toml:"limits"`
}

// GCPConfig selects the Vertex AI project used to scan puzzle photos.
// An empty ProjectID disables scanning.
type GCPConfig struct {
	ProjectID string `toml:"project_id"`
	Region    string `toml:"region"`
	Model     string `toml:"model"`
}

// LimitsConfig holds the per-IP rate limits.
type LimitsConfig struct {
	UploadsPerMinute  int `toml:"uploads_per_minute"`
	CommandsPerSecond int `toml:"commands_per_second"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Addr: defaultAddr,
		GCP: GCPConfig{
			Region: defaultRegion,
			Model:  defaultModel,
		},
		Limits: LimitsConfig{
			UploadsPerMinute:  defaultUploadsPerMinute,
			CommandsPerSecond: defaultCommandsPerSecond,
		},
	}
}

// LoadConfig reads filename (skipped when empty) over the defaults and
// applies environment overrides.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename != "" {
		md, err := toml.DecodeFile(filename, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", filename, err)
		}
		for _, key := range md.Undecoded() {
			log.Printf("Clé de configuration inconnue ignorée : %s", key)
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := getenv("PUZZLE_DIR"); v != "" {
		c.PuzzleDir = v
	}
	if v := getenv("GCP_PROJECT_ID"); v != "" {
		c.GCP.ProjectID = v
	}
	if v := getenv("GCP_REGION"); v != "" {
		c.GCP.Region = v
	}
	if v := getenv("GEMINI_MODEL"); v != "" {
		c.GCP.Model = v
	}
}

// fillDefaults restores defaults for values a file explicitly blanked.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.GCP.Region == "" {
		c.GCP.Region = d.GCP.Region
	}
	if c.GCP.Model == "" {
		c.GCP.Model = d.GCP.Model
	}
	if c.Limits.UploadsPerMinute <= 0 {
		c.Limits.UploadsPerMinute = d.Limits.UploadsPerMinute
	}
	if c.Limits.CommandsPerSecond <= 0 {
		c.Limits.CommandsPerSecond = d.Limits.CommandsPerSecond
	}
}

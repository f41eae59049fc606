// Package config holds the bootstrapper settings: built-in defaults plus an
// optional studio.yaml override file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/content-studio/studioctl/internal/pyver"
)

const Filename = "studio.yaml"

type Tool struct {
	Name  string   `yaml:"name"`
	Hints []string `yaml:"hints,omitempty"`
}

type Config struct {
	Interpreters  []string `yaml:"interpreters,omitempty"`
	MinVersion    string   `yaml:"minVersion,omitempty"`
	VenvDir       string   `yaml:"venvDir,omitempty"`
	Requirements  string   `yaml:"requirements,omitempty"`
	OutputDir     string   `yaml:"outputDir,omitempty"`
	EnvFile       string   `yaml:"envFile,omitempty"`
	EnvTemplate   string   `yaml:"envTemplate,omitempty"`
	APIKeyEnv     string   `yaml:"apiKeyEnv,omitempty"`
	OptionalTools []Tool   `yaml:"optionalTools,omitempty"`
}

// Default returns the settings the zero-argument spec surface relies on.
func Default() Config {
	return Config{
		Interpreters: []string{"python3", "python"},
		MinVersion:   "3.10",
		VenvDir:      ".venv",
		Requirements: "requirements.txt",
		OutputDir:    "content_outputs",
		EnvFile:      ".env",
		EnvTemplate:  ".env.example",
		APIKeyEnv:    "ANTHROPIC_API_KEY",
		OptionalTools: []Tool{
			{
				Name: "ffmpeg",
				Hints: []string{
					"macOS:          brew install ffmpeg",
					"Debian/Ubuntu:  sudo apt-get install ffmpeg",
					"Windows:        choco install ffmpeg",
				},
			},
			{
				Name: "espeak",
				Hints: []string{
					"macOS:          brew install espeak",
					"Debian/Ubuntu:  sudo apt-get install espeak",
					"Windows:        choco install espeak",
				},
			},
		},
	}
}

// Load reads studio.yaml from projectDir when present and merges it over the
// defaults. An absent file is not an error; a malformed one is.
func Load(projectDir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(projectDir, Filename)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", Filename, err)
	}
	var overlay Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", Filename, err)
	}
	cfg.merge(overlay)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", Filename, err)
	}
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if len(o.Interpreters) > 0 {
		c.Interpreters = o.Interpreters
	}
	if strings.TrimSpace(o.MinVersion) != "" {
		c.MinVersion = strings.TrimSpace(o.MinVersion)
	}
	if strings.TrimSpace(o.VenvDir) != "" {
		c.VenvDir = strings.TrimSpace(o.VenvDir)
	}
	if strings.TrimSpace(o.Requirements) != "" {
		c.Requirements = strings.TrimSpace(o.Requirements)
	}
	if strings.TrimSpace(o.OutputDir) != "" {
		c.OutputDir = strings.TrimSpace(o.OutputDir)
	}
	if strings.TrimSpace(o.EnvFile) != "" {
		c.EnvFile = strings.TrimSpace(o.EnvFile)
	}
	if strings.TrimSpace(o.EnvTemplate) != "" {
		c.EnvTemplate = strings.TrimSpace(o.EnvTemplate)
	}
	if strings.TrimSpace(o.APIKeyEnv) != "" {
		c.APIKeyEnv = strings.TrimSpace(o.APIKeyEnv)
	}
	if len(o.OptionalTools) > 0 {
		c.OptionalTools = o.OptionalTools
	}
}

func (c Config) validate() error {
	if _, err := pyver.Parse(c.MinVersion); err != nil {
		return fmt.Errorf("minVersion: %w", err)
	}
	for _, name := range c.Interpreters {
		if strings.TrimSpace(name) == "" {
			return errors.New("interpreters entries must not be empty")
		}
	}
	for _, t := range c.OptionalTools {
		if strings.TrimSpace(t.Name) == "" {
			return errors.New("optionalTools entries require a name")
		}
	}
	return nil
}

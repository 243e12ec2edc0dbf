// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and persists the TOML configuration file.
//
// The default location is ~/.evidex/config.toml. A missing file yields the
// defaults; a malformed file is an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/evidex/ai"
)

// DefaultFileName is the configuration file's name inside the config directory.
const DefaultFileName = "config.toml"

// ServiceConfig locates one OpenAI-compatible service.
type ServiceConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

// Config is the on-disk configuration.
type Config struct {
	// DataDir holds the record database, vector store, and similarity index.
	DataDir string `toml:"data_dir"`

	// Embedding and Summary locate the optional AI services.
	Embedding ServiceConfig `toml:"embedding"`
	Summary   ServiceConfig `toml:"summary"`

	// ProbeTimeoutSeconds bounds the startup embedder availability probe.
	ProbeTimeoutSeconds int `toml:"probe_timeout_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir: filepath.Join(home, ".evidex", "data"),
		Embedding: ServiceConfig{
			Host:  "http://localhost:11434/v1",
			Model: "embeddinggemma",
		},
		Summary: ServiceConfig{
			Host:  "http://localhost:11434/v1",
			Model: "qwen2.5:3b",
		},
		ProbeTimeoutSeconds: 5,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".evidex", DefaultFileName), nil
}

// Load reads the configuration at path. A missing file returns the
// defaults; fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ProbeTimeout returns the probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	if c.ProbeTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// AIConfig converts the service settings into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithSummaryHost(c.Summary.Host),
		ai.WithSummaryModel(c.Summary.Model),
	)
}

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/ostafen/pnglet/internal/env"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/ostafen/pnglet/pkg/util/format"
)

type Config struct {
	Compression Compression `yaml:"compression,omitempty"`
	// Filter is a filter name or "adaptive"
	Filter string `yaml:"filter,omitempty"`
	// Largest IDAT payload, e.g. "64KB"; empty writes a single IDAT chunk
	MaxIDATSize string `yaml:"maxIdatSize,omitempty"`
	LogLevel    string `yaml:"logLevel,omitempty"`
}

type Compression struct {
	Level    *int   `yaml:"level,omitempty"`
	Strategy string `yaml:"strategy,omitempty"`
}

// Default mirrors the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Filter:   "adaptive",
		LogLevel: "INFO",
	}
}

// Load reads the configuration file at path. With an empty path it looks for
// $XDG_CONFIG_HOME/pnglet/config.yml (or .yaml) and falls back to Default
// when none exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		return cfg, nil
	}

	basePath := filepath.Join(configPath(), "config")
	for _, ext := range []string{".yml", ".yaml"} {
		if b, err := os.ReadFile(basePath + ext); err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
			return cfg, nil
		}
	}
	return cfg, nil
}

// Encoder builds a png.Encoder from the configuration.
func (c *Config) Encoder() (*png.Encoder, error) {
	codec := png.DefaultCodec
	if c.Compression.Level != nil {
		codec.Level = *c.Compression.Level
	}
	if c.Compression.Strategy != "" {
		s, err := png.ParseStrategy(c.Compression.Strategy)
		if err != nil {
			return nil, err
		}
		codec.Strategy = s
	}
	// surface a bad level now rather than on the first encode
	if _, err := codec.Compress(nil); err != nil {
		return nil, err
	}

	policy, err := png.ParseFilterPolicy(c.Filter)
	if err != nil {
		return nil, err
	}

	var maxIDAT uint64
	if c.MaxIDATSize != "" {
		maxIDAT, err = format.ParseBytes(c.MaxIDATSize)
		if err != nil {
			return nil, fmt.Errorf("invalid maxIdatSize: %w", err)
		}
		if maxIDAT > png.MaxChunkLength {
			return nil, fmt.Errorf("maxIdatSize %s exceeds the chunk length limit", c.MaxIDATSize)
		}
	}

	return &png.Encoder{
		Compressor:  codec,
		Policy:      policy,
		MaxIDATSize: int(maxIDAT),
	}, nil
}

func configPath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, env.AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", env.AppName)
	}
	return filepath.Join(home, ".config", env.AppName)
}

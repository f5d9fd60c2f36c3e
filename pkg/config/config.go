// Copyright 2025 walteh LLC
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

package config

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers.
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of registered format parsers.
var parsers []Parser

// 📝 Register registers a parser.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config holds run defaults loaded from a .jgreprc file. Every field
// is optional; command-line flags override whatever is set here.
type Config struct {
	Target       string `json:"target,omitempty" yaml:"target,omitempty"`
	Recurse      bool   `json:"recurse,omitempty" yaml:"recurse,omitempty"`
	ExcludeDirs  string `json:"exclude_dirs,omitempty" yaml:"exclude_dirs,omitempty"`
	ExcludeFiles string `json:"exclude_files,omitempty" yaml:"exclude_files,omitempty"`
	Parallel     int    `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Codepage     string `json:"codepage,omitempty" yaml:"codepage,omitempty"`
	Signatures   string `json:"signatures,omitempty" yaml:"signatures,omitempty"`
	Out          string `json:"out,omitempty" yaml:"out,omitempty"`
	TextOnly     bool   `json:"text_only,omitempty" yaml:"text_only,omitempty"`
	IgnoreCase   bool   `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty"`
	Quiet        bool   `json:"quiet,omitempty" yaml:"quiet,omitempty"`
}

// 🎯 Load loads run defaults from a file. A missing file is not an
// error: the zero Config applies.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug().Str("path", path).Msg("no defaults file")
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("path", path).Msg("loaded defaults file")
	return cfg, nil
}

// ✅ Validate rejects values no run could use.
func (c *Config) Validate() error {
	if c.Parallel < 0 {
		return errors.Errorf("parallel must be non-negative, got %d", c.Parallel)
	}
	return nil
}

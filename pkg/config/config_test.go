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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: ".jgreprc.yaml",
			config: `
target: "*.go"
recurse: true
exclude_dirs: "node_modules;.git"
parallel: 8
codepage: Shift_JIS
out: results.txt
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "*.go", cfg.Target, "target should match")
				assert.True(t, cfg.Recurse, "recurse should be set")
				assert.Equal(t, "node_modules;.git", cfg.ExcludeDirs, "exclude dirs should match")
				assert.Equal(t, 8, cfg.Parallel, "parallel should match")
				assert.Equal(t, "Shift_JIS", cfg.Codepage, "codepage should match")
				assert.Equal(t, "results.txt", cfg.Out, "out should match")
			},
		},
		{
			name:     "valid_hcl",
			filename: ".jgreprc.hcl",
			config: `
target       = "*.cs"
recurse      = true
ignore_case  = true
exclude_files = "*.min.js"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "*.cs", cfg.Target, "target should match")
				assert.True(t, cfg.Recurse, "recurse should be set")
				assert.True(t, cfg.IgnoreCase, "ignore case should be set")
				assert.Equal(t, "*.min.js", cfg.ExcludeFiles, "exclude files should match")
			},
		},
		{
			name:     "valid_json",
			filename: ".jgreprc.json",
			config:   `{"target": "*.log", "text_only": true, "quiet": true}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "*.log", cfg.Target, "target should match")
				assert.True(t, cfg.TextOnly, "text only should be set")
				assert.True(t, cfg.Quiet, "quiet should be set")
			},
		},
		{
			name:        "negative_parallel",
			filename:    ".jgreprc.yaml",
			config:      `parallel: -2`,
			wantErr:     true,
			errContains: "parallel",
		},
		{
			name:        "bad_yaml",
			filename:    ".jgreprc.yaml",
			config:      "target: [unclosed",
			wantErr:     true,
			errContains: "parsing",
		},
		{
			name:        "unknown_extension",
			filename:    ".jgreprc.toml",
			config:      `target = "*.go"`,
			wantErr:     true,
			errContains: "no parser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644), "writing config fixture")

			cfg, err := Load(context.Background(), path)
			if tt.wantErr {
				require.Error(t, err, "Load should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should explain the failure")
				return
			}
			require.NoError(t, err, "Load should succeed")
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), ".jgreprc.yaml"))
	require.NoError(t, err, "a missing defaults file is not an error")
	assert.Equal(t, &Config{}, cfg, "missing file should yield the zero config")
}

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

package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrMissingPath reports a root path that does not exist; the run aborts
// before any worker starts.
var ErrMissingPath = errors.New("missing path")

// 🧭 Options controls enumeration. ExcludeDirs patterns are matched
// against each directory name on the way down; ExcludeFiles and Target
// against the leaf file name. Both lists are ";"-separated globs.
type Options struct {
	Roots        []string
	Target       string
	Recurse      bool
	ExcludeDirs  string
	ExcludeFiles string
}

// 🚶 Enumerate walks the roots in order and returns the absolute paths
// of every candidate file, lexicographically within each root. The order
// is deterministic, which is what makes the aggregated output
// reproducible run to run.
func Enumerate(ctx context.Context, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	target := opts.Target
	if target == "" {
		target = "*"
	}
	if !doublestar.ValidatePattern(target) {
		return nil, errors.Errorf("invalid target glob %q", target)
	}
	excludeDirs := splitList(opts.ExcludeDirs)
	excludeFiles := splitList(opts.ExcludeFiles)

	var files []string
	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", root, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, errors.Errorf("%w: %s", ErrMissingPath, root)
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries are skipped, not fatal.
				logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path == abs {
					return nil
				}
				if !opts.Recurse {
					return fs.SkipDir
				}
				if matchAny(excludeDirs, d.Name()) {
					logger.Debug().Str("dir", path).Msg("excluded directory")
					return fs.SkipDir
				}
				return nil
			}
			name := d.Name()
			if ok, _ := doublestar.Match(target, name); !ok {
				return nil
			}
			if matchAny(excludeFiles, name) {
				logger.Debug().Str("file", path).Msg("excluded file")
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("walking %s: %w", abs, err)
		}
	}

	logger.Debug().Int("count", len(files)).Msg("enumerated files")
	return files, nil
}

// splitList splits a ";"-separated glob list, trimming entries and
// dropping empties; an empty input yields nil (the filter is absent).
func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

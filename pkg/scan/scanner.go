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

package scan

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/walteh/jgrep/pkg/magic"
)

// 🔬 ScanFile runs the per-file pipeline over one path: existence check,
// binary filter, encoding resolution, line-by-line match, formatted
// emission. Match records go to out, one per line; diagnostics go to
// dbg. Every failure is local: it is noted in dbg and the function
// returns with whatever was emitted so far. The run never aborts on a
// per-file problem.
func ScanFile(cfg *Config, path string, out, dbg io.Writer) (matches int) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(dbg, "not found: %s\n", path)
		return 0
	}

	if cfg.TextOnly {
		name, isBinary, err := magic.Classify(path, cfg.Signatures)
		if err != nil {
			// Unclassifiable files are treated as text.
			fmt.Fprintf(dbg, "classify failed, assuming text: %s: %v\n", path, err)
		} else if isBinary {
			fmt.Fprintf(dbg, "skipping binary (%s): %s\n", name, path)
			return 0
		}
	}

	key := cfg.Codepage
	if key == Auto {
		detected, err := cfg.Encodings.Detect(path)
		if err != nil {
			fmt.Fprintf(dbg, "detection failed: %s: %v\n", path, err)
			return 0
		}
		key = detected
	}
	info, ok := cfg.Encodings.Info(key)
	if !ok {
		fmt.Fprintf(dbg, "unknown encoding %q: %s\n", key, path)
		return 0
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(dbg, "open failed: %s: %v\n", path, err)
		return 0
	}
	defer f.Close()

	sc, err := cfg.Encodings.NewLineScanner(f, key)
	if err != nil {
		fmt.Fprintf(dbg, "decoder failed: %s: %v\n", path, err)
		return 0
	}

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		loc := cfg.Regex.FindStringIndex(line)
		if loc == nil {
			continue
		}
		payload := line
		if cfg.OutputMatchedPart {
			payload = line[loc[0]:loc[1]]
		}
		m := Match{
			Path: path,
			Line: lineNo,
			// 1-based column in decoded characters.
			Col:      utf8.RuneCountInString(line[:loc[0]]) + 1,
			Encoding: info.Display,
			Payload:  payload,
		}
		fmt.Fprintln(out, m.String())
		matches++
		if cfg.FirstMatchOnly {
			return matches
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(dbg, "read failed: %s: %v\n", path, err)
	}
	return matches
}

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

package status

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/walteh/jgrep/pkg/scan"
	"github.com/walteh/jgrep/pkg/sink"
)

// 📋 HeaderInfo is everything the result-file header block names: the
// pattern, where the search ran, and which flags were active.
type HeaderInfo struct {
	Pattern        string
	Target         string
	Roots          []string
	ExcludeDirs    string
	ExcludeFiles   string
	Recurse        bool
	TextOnly       bool
	Word           bool
	IgnoreCase     bool
	Regex          bool
	Codepage       string
	MatchedPart    bool
	FirstMatchOnly bool
}

// 📝 WriteHeader writes the leading blank line and the header block to
// the result sink: pattern, target, roots, exclusions, then one
// annotation line per active flag.
func WriteHeader(s *sink.Sink, h HeaderInfo) error {
	lines := []string{
		"",
		fmt.Sprintf("Pattern : %s", h.Pattern),
		fmt.Sprintf("Target  : %s", h.Target),
		fmt.Sprintf("Path    : %s", strings.Join(h.Roots, ";")),
	}
	if h.ExcludeDirs != "" {
		lines = append(lines, fmt.Sprintf("Exclude dirs  : %s", h.ExcludeDirs))
	}
	if h.ExcludeFiles != "" {
		lines = append(lines, fmt.Sprintf("Exclude files : %s", h.ExcludeFiles))
	}
	if h.Recurse {
		lines = append(lines, "* recursive")
	}
	if h.TextOnly {
		lines = append(lines, "* text files only")
	}
	if h.Word {
		lines = append(lines, "* whole word")
	}
	if h.IgnoreCase {
		lines = append(lines, "* ignore case")
	} else {
		lines = append(lines, "* case sensitive")
	}
	if h.Regex {
		lines = append(lines, "* regular expression (RE2)")
	}
	lines = append(lines, fmt.Sprintf("* codepage: %s", h.Codepage))
	if h.MatchedPart {
		lines = append(lines, "* output matched part only")
	}
	if h.FirstMatchOnly {
		lines = append(lines, "* first match only")
	}
	lines = append(lines, "")

	for _, line := range lines {
		if err := s.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// 📣 Reporter renders run progress to the console. It is driven by the
// orchestrator's per-job callback on a single goroutine.
type Reporter struct {
	console io.Writer
	percent *color.Color
	plain   *color.Color
	wrote   bool
}

// 🏭 NewReporter builds a reporter writing to console (normally stderr,
// so the progress line never mixes into piped output).
func NewReporter(console io.Writer) *Reporter {
	return &Reporter{
		console: console,
		percent: color.New(color.FgCyan, color.Bold),
		plain:   color.New(color.Faint),
	}
}

// 📈 Progress rewrites the in-place progress line after a drained job.
func (r *Reporter) Progress(completed, total int, elapsed time.Duration) {
	if total == 0 {
		return
	}
	pct := completed * 100 / total
	fmt.Fprintf(r.console, "\r%s %s",
		r.percent.Sprintf("%3d%%", pct),
		r.plain.Sprintf("(%d/%d) %s", completed, total, scan.Elapsed(elapsed)))
	r.wrote = true
}

// 🏁 Done terminates the progress line and prints the run summary.
func (r *Reporter) Done(matches int, out string, elapsed time.Duration) {
	if r.wrote {
		fmt.Fprintln(r.console)
	}
	pterm.Success.WithWriter(r.console).
		Printfln("%d items matched in %s -> %s", matches, scan.Elapsed(elapsed), out)
}

// ❌ Fail prints a run-fatal error before exit.
func (r *Reporter) Fail(err error) {
	if r.wrote {
		fmt.Fprintln(r.console)
	}
	pterm.Error.WithWriter(r.console).Println(err)
}

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

package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/jgrep/pkg/chardet"
	"github.com/walteh/jgrep/pkg/config"
	"github.com/walteh/jgrep/pkg/magic"
	"github.com/walteh/jgrep/pkg/pattern"
	"github.com/walteh/jgrep/pkg/scan"
	"github.com/walteh/jgrep/pkg/sink"
	"github.com/walteh/jgrep/pkg/status"
	"github.com/walteh/jgrep/pkg/walker"
	"gitlab.com/tozd/go/errors"
)

// rootFlags holds every command-line value. Defaults-file values apply
// only where the flag was not set on the command line.
type rootFlags struct {
	pattern         string
	target          string
	recurse         bool
	excludeDirs     string
	excludeFiles    string
	useRegex        bool
	word            bool
	ignoreCase      bool
	textOnly        bool
	codepage        string
	firstMatchOnly  bool
	matchedPart     bool
	parallel        int
	out             string
	signatures      string
	writeSignatures string
	quiet           bool
	debug           bool
	configFile      string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "jgrep -p <pattern> [flags] <path>...",
		Short: "Parallel recursive text search with Japanese-aware encoding detection",
		Long: `jgrep searches file trees for lines matching a pattern, classifying
binary files by magic number and auto-detecting Shift_JIS, EUC-JP, JIS,
and Unicode encodings per file. Results are aggregated into an
editor-compatible UTF-8 report in input-file order, no matter how the
parallel workers interleave.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", "", "pattern to search for")
	cmd.Flags().StringVarP(&flags.target, "target", "t", "*", "filename glob to search")
	cmd.Flags().BoolVarP(&flags.recurse, "recurse", "r", false, "descend into subdirectories")
	cmd.Flags().StringVar(&flags.excludeDirs, "exclude-dir", "", "';'-separated directory globs to skip")
	cmd.Flags().StringVar(&flags.excludeFiles, "exclude-file", "", "';'-separated filename globs to skip")
	cmd.Flags().BoolVarP(&flags.useRegex, "regex", "e", false, "treat pattern as a regular expression")
	cmd.Flags().BoolVarP(&flags.word, "word", "w", false, "match whole words only")
	cmd.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "case-insensitive match")
	cmd.Flags().BoolVar(&flags.textOnly, "text-only", false, "skip files matching a binary signature")
	cmd.Flags().StringVar(&flags.codepage, "codepage", "AUTO", "encoding (AUTO or a registry name, e.g. Shift_JIS)")
	cmd.Flags().BoolVar(&flags.firstMatchOnly, "first-match-only", false, "stop scanning a file after its first match")
	cmd.Flags().BoolVar(&flags.matchedPart, "matched-part", false, "emit only the matched substring")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "j", 0, "worker count (default: number of CPUs)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "jgrep_result.txt", "result file path")
	cmd.Flags().StringVar(&flags.signatures, "signatures", "", "JSON magic-number table (default: built-in)")
	cmd.Flags().StringVar(&flags.writeSignatures, "write-signatures", "", "write the built-in signature table as JSON and exit")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress progress output")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", ".jgreprc.yaml", "defaults file path")

	return cmd
}

// run is the whole startup sequence: logging, defaults file, validation,
// table and pattern construction, enumeration, then the scan itself.
// Every configuration error surfaces here, before any worker starts.
func run(cmd *cobra.Command, args []string, flags *rootFlags) error {
	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())
	reporter := status.NewReporter(os.Stderr)

	fail := func(err error) error {
		reporter.Fail(err)
		logger.Error().Err(err).Msg("run aborted")
		return err
	}

	// Export mode: write the built-in table and stop.
	if flags.writeSignatures != "" {
		if err := magic.SaveJSON(flags.writeSignatures, magic.DefaultTable()); err != nil {
			return fail(err)
		}
		logger.Info().Str("path", flags.writeSignatures).Msg("wrote signature table")
		return nil
	}

	defaults, err := config.Load(ctx, flags.configFile)
	if err != nil {
		return fail(err)
	}
	applyDefaults(cmd, flags, defaults)

	if flags.pattern == "" {
		return fail(errors.New("a pattern is required (-p)"))
	}
	if flags.useRegex && flags.word {
		return fail(errors.New("--regex and --word are mutually exclusive"))
	}
	if len(args) == 0 {
		return fail(errors.New("at least one search path is required"))
	}
	if flags.parallel <= 0 {
		flags.parallel = runtime.NumCPU()
	}

	encodings := chardet.NewRegistry()
	codepage := scan.Auto
	if !strings.EqualFold(flags.codepage, string(scan.Auto)) {
		key, ok := encodings.Lookup(flags.codepage)
		if !ok {
			return fail(errors.Errorf("unknown codepage %q", flags.codepage))
		}
		codepage = key
	}

	table := magic.DefaultTable()
	if flags.signatures != "" {
		table, err = magic.LoadJSON(flags.signatures)
		if err != nil {
			return fail(err)
		}
	}

	re, err := pattern.Compile(flags.pattern, flags.useRegex, flags.ignoreCase, flags.word)
	if err != nil {
		return fail(err)
	}

	files, err := walker.Enumerate(ctx, walker.Options{
		Roots:        args,
		Target:       flags.target,
		Recurse:      flags.recurse,
		ExcludeDirs:  flags.excludeDirs,
		ExcludeFiles: flags.excludeFiles,
	})
	if err != nil {
		return fail(err)
	}

	results, err := sink.New(flags.out, sink.DefaultFlushInterval)
	if err != nil {
		return fail(err)
	}
	defer results.Close()

	var dbgSink *sink.DebugSink
	if flags.debug {
		logPath := strings.TrimSuffix(flags.out, filepath.Ext(flags.out)) + ".log"
		dbgSink, err = sink.NewDebug(logPath, sink.DefaultFlushInterval)
		if err != nil {
			return fail(err)
		}
		defer dbgSink.Close()
	}

	cfg := &scan.Config{
		Regex:             re,
		TextOnly:          flags.textOnly,
		Signatures:        table,
		Encodings:         encodings,
		Codepage:          codepage,
		FirstMatchOnly:    flags.firstMatchOnly,
		OutputMatchedPart: flags.matchedPart,
		Parallelism:       flags.parallel,
		Quiet:             flags.quiet,
		Debug:             flags.debug,
		StartTime:         time.Now(),
	}

	if err := status.WriteHeader(results, status.HeaderInfo{
		Pattern:        flags.pattern,
		Target:         flags.target,
		Roots:          args,
		ExcludeDirs:    flags.excludeDirs,
		ExcludeFiles:   flags.excludeFiles,
		Recurse:        flags.recurse,
		TextOnly:       flags.textOnly,
		Word:           flags.word,
		IgnoreCase:     flags.ignoreCase,
		Regex:          flags.useRegex,
		Codepage:       string(codepage),
		MatchedPart:    flags.matchedPart,
		FirstMatchOnly: flags.firstMatchOnly,
	}); err != nil {
		return fail(err)
	}

	orch := scan.NewOrchestrator(cfg, results, dbgSink, reporter.Progress)
	matches, err := orch.Run(ctx, files)
	if err != nil {
		return fail(err)
	}

	if !flags.quiet {
		reporter.Done(matches, flags.out, time.Since(cfg.StartTime))
	}
	return nil
}

// applyDefaults copies defaults-file values into flags the user did not
// set on the command line.
func applyDefaults(cmd *cobra.Command, flags *rootFlags, d *config.Config) {
	set := cmd.Flags().Changed
	if !set("target") && d.Target != "" {
		flags.target = d.Target
	}
	if !set("recurse") && d.Recurse {
		flags.recurse = true
	}
	if !set("exclude-dir") && d.ExcludeDirs != "" {
		flags.excludeDirs = d.ExcludeDirs
	}
	if !set("exclude-file") && d.ExcludeFiles != "" {
		flags.excludeFiles = d.ExcludeFiles
	}
	if !set("parallel") && d.Parallel > 0 {
		flags.parallel = d.Parallel
	}
	if !set("codepage") && d.Codepage != "" {
		flags.codepage = d.Codepage
	}
	if !set("signatures") && d.Signatures != "" {
		flags.signatures = d.Signatures
	}
	if !set("out") && d.Out != "" {
		flags.out = d.Out
	}
	if !set("text-only") && d.TextOnly {
		flags.textOnly = true
	}
	if !set("ignore-case") && d.IgnoreCase {
		flags.ignoreCase = true
	}
	if !set("quiet") && d.Quiet {
		flags.quiet = true
	}
}

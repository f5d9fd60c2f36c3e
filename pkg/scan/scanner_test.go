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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/jgrep/pkg/chardet"
	"github.com/walteh/jgrep/pkg/magic"
	"github.com/walteh/jgrep/pkg/pattern"
)

func testConfig(t *testing.T, pat string, mutate func(*Config)) *Config {
	t.Helper()
	re, err := pattern.Compile(pat, false, false, false)
	require.NoError(t, err, "compiling pattern")
	cfg := &Config{
		Regex:       re,
		Signatures:  magic.DefaultTable(),
		Encodings:   chardet.NewRegistry(),
		Codepage:    Auto,
		Parallelism: 1,
		StartTime:   time.Now(),
	}
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func writeScanFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644), "writing fixture")
	return path
}

func scanOne(cfg *Config, path string) (lines []string, dbg string, n int) {
	var out, dbgBuf bytes.Buffer
	n = ScanFile(cfg, path, &out, &dbgBuf)
	text := strings.TrimRight(out.String(), "\n")
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return lines, dbgBuf.String(), n
}

func TestScanFilePlainASCII(t *testing.T) {
	cfg := testConfig(t, "world", nil)
	path := writeScanFile(t, "a.txt", []byte("hello\nworld\n"))

	lines, _, n := scanOne(cfg, path)
	require.Equal(t, 1, n, "one line should match")
	require.Len(t, lines, 1, "one record should be emitted")
	assert.Equal(t, fmt.Sprintf("%s(2,1)  [ASCII]: world", path), lines[0], "record format should match")
}

func TestScanFileUTF8BOMJapanese(t *testing.T) {
	cfg := testConfig(t, "error", nil)
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("あいうerror\n")...)
	path := writeScanFile(t, "b.txt", data)

	lines, _, n := scanOne(cfg, path)
	require.Equal(t, 1, n, "one line should match")
	require.Len(t, lines, 1, "one record should be emitted")
	// Column 4: あ(1) い(2) う(3) e(4), counted in decoded characters
	// with the BOM stripped by the decoder.
	assert.Equal(t, fmt.Sprintf("%s(1,4)  [UTF-8]: あいうerror", path), lines[0], "record should use the UTF-8 display name and character column")
}

func TestScanFileSJISAuto(t *testing.T) {
	cfg := testConfig(t, "こんにちは", nil)
	// こんにちは in Shift_JIS, then an ASCII line.
	data := []byte{0x82, 0xB1, 0x82, 0xF1, 0x82, 0xC9, 0x82, 0xBF, 0x82, 0xCD, '\r', '\n'}
	data = append(data, "tail\r\n"...)
	path := writeScanFile(t, "c.txt", data)

	lines, _, n := scanOne(cfg, path)
	require.Equal(t, 1, n, "the Japanese line should match")
	assert.Contains(t, lines[0], "[Shift_JIS]", "record should carry the detected display name")
	assert.Contains(t, lines[0], "(1,1)", "match should be at line 1 column 1")
}

func TestScanFileFixedCodepage(t *testing.T) {
	cfg := testConfig(t, "tail", func(c *Config) { c.Codepage = chardet.SJIS })
	path := writeScanFile(t, "d.txt", []byte("head\ntail\n"))

	lines, _, n := scanOne(cfg, path)
	require.Equal(t, 1, n, "match should be found")
	assert.Contains(t, lines[0], "[Shift_JIS]", "fixed codepage should bypass detection")
}

func TestScanFileFirstMatchOnly(t *testing.T) {
	content := []byte("ERROR one\nok\nERROR two\nERROR three\n")

	cfg := testConfig(t, "ERROR", nil)
	path := writeScanFile(t, "f.log", content)
	lines, _, n := scanOne(cfg, path)
	assert.Equal(t, 3, n, "all matches counted without first-match-only")

	first := testConfig(t, "ERROR", func(c *Config) { c.FirstMatchOnly = true })
	linesFirst, _, nFirst := scanOne(first, path)
	require.Equal(t, 1, nFirst, "first-match-only should stop after one record")
	require.Len(t, linesFirst, 1, "exactly one record should be emitted")
	assert.Equal(t, lines[0], linesFirst[0], "the first record should be unchanged")
	assert.Contains(t, linesFirst[0], "(1,1)", "the first matching line should win")
}

func TestScanFileMatchedPart(t *testing.T) {
	cfg := testConfig(t, "err[0-9]+", func(c *Config) { c.OutputMatchedPart = true })
	re, err := pattern.Compile("err[0-9]+", true, false, false)
	require.NoError(t, err, "compiling regex")
	cfg.Regex = re

	path := writeScanFile(t, "g.txt", []byte("prefix err42 suffix\n"))
	lines, _, n := scanOne(cfg, path)
	require.Equal(t, 1, n, "match should be found")
	assert.True(t, strings.HasSuffix(lines[0], ": err42"), "payload should be only the matched part, got %q", lines[0])
	assert.Contains(t, lines[0], "(1,8)", "column should point at the match start")
}

func TestScanFileTextOnlySkipsBinary(t *testing.T) {
	zip := append([]byte{'P', 'K', 0x03, 0x04}, []byte("PK PK PK\n")...)

	cfg := testConfig(t, "PK", func(c *Config) { c.TextOnly = true })
	path := writeScanFile(t, "c.zip", zip)
	lines, dbg, n := scanOne(cfg, path)
	assert.Zero(t, n, "binary file should contribute no records")
	assert.Empty(t, lines, "no records should be emitted")
	assert.Contains(t, dbg, "ZIP", "debug log should name the signature")

	// Without text-only the same file is scanned as text.
	loose := testConfig(t, "PK", nil)
	_, _, nLoose := scanOne(loose, path)
	assert.Greater(t, nLoose, 0, "without text-only the content should match")
}

func TestScanFileMissing(t *testing.T) {
	cfg := testConfig(t, "x", nil)
	lines, dbg, n := scanOne(cfg, filepath.Join(t.TempDir(), "absent.txt"))
	assert.Zero(t, n, "missing file should yield no matches")
	assert.Empty(t, lines, "missing file should emit nothing")
	assert.Contains(t, dbg, "not found", "debug log should record the miss")
}

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

package chardet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, reg *Registry, data []byte, k Key) []string {
	t.Helper()
	sc, err := reg.NewLineScanner(bytes.NewReader(data), k)
	require.NoError(t, err, "building line scanner")
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err(), "scanning lines")
	return lines
}

func TestLineScannerTerminators(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		data string
		want []string
	}{
		{name: "lf", data: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", data: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "cr_only", data: "a\rb\r", want: []string{"a", "b"}},
		{name: "mixed", data: "a\nb\r\nc\rd", want: []string{"a", "b", "c", "d"}},
		{name: "no_trailing_terminator", data: "a\nb", want: []string{"a", "b"}},
		{name: "empty_lines", data: "a\n\nb\n", want: []string{"a", "", "b"}},
		{name: "cr_at_eof", data: "a\r", want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanAll(t, reg, []byte(tt.data), UTF8N)
			assert.Equal(t, tt.want, got, "lines should match with terminators stripped")
		})
	}
}

func TestLineScannerSJIS(t *testing.T) {
	reg := NewRegistry()

	var data []byte
	data = append(data, sjisKonnichiwa...)
	data = append(data, '\r', '\n')
	data = append(data, "second"...)
	data = append(data, '\n')

	lines := scanAll(t, reg, data, SJIS)
	require.Len(t, lines, 2, "should decode two lines")
	assert.Equal(t, "こんにちは", lines[0], "SJIS bytes should decode")
	assert.Equal(t, "second", lines[1], "ASCII tail should pass through")
}

func TestLineScannerUTF16(t *testing.T) {
	reg := NewRegistry()

	// "hi\nyo" as UTF-16LE with BOM; the decoder consumes the BOM.
	data := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0, 'y', 0, 'o', 0}
	lines := scanAll(t, reg, data, UTF16LE)
	assert.Equal(t, []string{"hi", "yo"}, lines, "UTF-16LE stream should decode and split")
}

func TestLineScannerMalformedBytes(t *testing.T) {
	reg := NewRegistry()

	// A truncated UTF-8 sequence must decode to the replacement rune,
	// not abort the scan.
	data := []byte("ok \xE3\x81 end\nnext\n")
	lines := scanAll(t, reg, data, UTF8N)
	require.Len(t, lines, 2, "malformed bytes should not stop iteration")
	assert.True(t, strings.Contains(lines[0], "�"), "invalid sequence should become the replacement rune")
	assert.Equal(t, "next", lines[1], "following lines should still decode")
}

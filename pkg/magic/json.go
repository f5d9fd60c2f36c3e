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

package magic

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📦 jsonSignature is the on-disk form of one signature: space-separated
// two-character hex tokens, "??" meaning wildcard, at an optional offset.
type jsonSignature struct {
	Hex    string `json:"Hex"`
	Offset int    `json:"Offset,omitempty"`
}

// 📥 LoadJSON reads a signature table from the given JSON file. The file
// maps signature names to {Hex, Offset} records; every token is validated
// and the offending signature is named on failure.
func LoadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading signature file: %w", err)
	}

	var raw map[string]jsonSignature
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Errorf("%w: parsing %s: %w", ErrInvalidSignature, path, err)
	}

	sigs := make([]Signature, 0, len(raw))
	for name, js := range raw {
		pattern, err := parseHex(js.Hex)
		if err != nil {
			return nil, errors.Errorf("%w: signature %q: %w", ErrInvalidSignature, name, err)
		}
		if js.Offset < 0 {
			return nil, errors.Errorf("%w: signature %q: negative offset %d", ErrInvalidSignature, name, js.Offset)
		}
		sigs = append(sigs, Signature{Name: name, Offset: js.Offset, Pattern: pattern})
	}
	return NewTable(sigs)
}

// 📤 SaveJSON writes the table in the LoadJSON format, names sorted for a
// stable file.
func SaveJSON(path string, table *Table) error {
	raw := make(map[string]jsonSignature, table.Len())
	for _, name := range table.names {
		sig := table.sigs[name]
		raw[name] = jsonSignature{Hex: formatHex(sig.Pattern), Offset: sig.Offset}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return errors.Errorf("encoding signature table: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Errorf("writing signature file: %w", err)
	}
	return nil
}

// parseHex converts "50 4B ?? 04" into a pattern slice.
func parseHex(hex string) ([]uint16, error) {
	fields := strings.Fields(hex)
	if len(fields) == 0 {
		return nil, errors.New("empty Hex value")
	}
	pattern := make([]uint16, len(fields))
	for i, tok := range fields {
		if tok == "??" {
			pattern[i] = Wildcard
			continue
		}
		if len(tok) != 2 {
			return nil, errors.Errorf("bad token %q", tok)
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, errors.Errorf("bad token %q", tok)
		}
		pattern[i] = uint16(v)
	}
	return pattern, nil
}

// formatHex is the inverse of parseHex.
func formatHex(pattern []uint16) string {
	toks := make([]string, len(pattern))
	for i, b := range pattern {
		if b == Wildcard {
			toks[i] = "??"
		} else {
			toks[i] = fmt.Sprintf("%02X", b)
		}
	}
	return strings.Join(toks, " ")
}

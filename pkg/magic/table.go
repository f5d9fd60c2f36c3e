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
	"sort"

	"gitlab.com/tozd/go/errors"
)

// 🃏 Wildcard is the pattern sentinel that matches any byte value.
// Concrete bytes occupy 0x00..0xFF, so any value >= 0x100 is free.
const Wildcard uint16 = 0x100

// 🧬 Signature is one magic-number entry: a byte pattern expected at a
// fixed offset from the start of the file. Pattern elements are either a
// concrete byte value or Wildcard.
type Signature struct {
	Name    string
	Offset  int
	Pattern []uint16
}

// end returns the first byte position past the pattern.
func (s Signature) end() int {
	return s.Offset + len(s.Pattern)
}

// 📚 Table is an immutable set of signatures keyed by name. It is built
// once at startup and shared read-only across scan workers.
type Table struct {
	sigs      map[string]Signature
	names     []string // sorted, so classification order is stable
	maxPrefix int
}

// 🏭 NewTable builds a table from the given signatures, validating each
// entry and precomputing the longest prefix any signature can reach.
func NewTable(sigs []Signature) (*Table, error) {
	t := &Table{sigs: make(map[string]Signature, len(sigs))}
	for _, sig := range sigs {
		if sig.Name == "" {
			return nil, errors.Errorf("%w: empty signature name", ErrInvalidSignature)
		}
		if _, ok := t.sigs[sig.Name]; ok {
			return nil, errors.Errorf("%w: duplicate signature %q", ErrInvalidSignature, sig.Name)
		}
		if sig.Offset < 0 {
			return nil, errors.Errorf("%w: signature %q has negative offset", ErrInvalidSignature, sig.Name)
		}
		if len(sig.Pattern) == 0 {
			return nil, errors.Errorf("%w: signature %q has empty pattern", ErrInvalidSignature, sig.Name)
		}
		for _, b := range sig.Pattern {
			if b > Wildcard {
				return nil, errors.Errorf("%w: signature %q has out-of-range element %#x", ErrInvalidSignature, sig.Name, b)
			}
		}
		t.sigs[sig.Name] = sig
		t.names = append(t.names, sig.Name)
		if sig.end() > t.maxPrefix {
			t.maxPrefix = sig.end()
		}
	}
	sort.Strings(t.names)
	return t, nil
}

// 📏 MaxPrefix is the number of leading file bytes that classification
// needs to examine: max(offset+len(pattern)) over all signatures.
func (t *Table) MaxPrefix() int {
	return t.maxPrefix
}

// 🔍 Get returns the named signature.
func (t *Table) Get(name string) (Signature, bool) {
	sig, ok := t.sigs[name]
	return sig, ok
}

// Names returns the signature names in classification order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of signatures in the table.
func (t *Table) Len() int {
	return len(t.sigs)
}

// bytesPattern is shorthand for a pattern with no wildcards.
func bytesPattern(bs ...byte) []uint16 {
	p := make([]uint16, len(bs))
	for i, b := range bs {
		p[i] = uint16(b)
	}
	return p
}

// 🏭 DefaultTable returns the built-in signature set covering the common
// archive, image, and executable formats. The TAR entry sits at offset
// 257 ("ustar" inside the header), which dominates MaxPrefix.
func DefaultTable() *Table {
	t, err := NewTable([]Signature{
		{Name: "ZIP", Pattern: bytesPattern('P', 'K', 0x03, 0x04)},
		{Name: "GZIP", Pattern: bytesPattern(0x1F, 0x8B)},
		{Name: "7Z", Pattern: bytesPattern(0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C)},
		{Name: "RAR", Pattern: bytesPattern(0x52, 0x61, 0x72, 0x21, 0x1A, 0x07)},
		{Name: "XZ", Pattern: bytesPattern(0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00)},
		{Name: "ZSTD", Pattern: bytesPattern(0x28, 0xB5, 0x2F, 0xFD)},
		{Name: "CAB", Pattern: bytesPattern('M', 'S', 'C', 'F')},
		{Name: "PDF", Pattern: bytesPattern('%', 'P', 'D', 'F')},
		{Name: "PNG", Pattern: bytesPattern(0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A)},
		{Name: "JPEG", Pattern: []uint16{0xFF, 0xD8, 0xFF, Wildcard}},
		{Name: "GIF", Pattern: []uint16{'G', 'I', 'F', '8', Wildcard, 'a'}},
		{Name: "BMP", Pattern: bytesPattern('B', 'M')},
		{Name: "EXE", Pattern: bytesPattern('M', 'Z')},
		{Name: "ELF", Pattern: bytesPattern(0x7F, 'E', 'L', 'F')},
		{Name: "TAR", Offset: 257, Pattern: bytesPattern('u', 's', 't', 'a', 'r')},
	})
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error, not an input error.
		panic(err)
	}
	return t
}

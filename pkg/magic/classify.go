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
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidSignature reports a malformed signature definition.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrClassify reports an I/O failure while reading the file prefix.
	ErrClassify = errors.New("classification failed")
)

// 🔍 Classify reads up to table.MaxPrefix() bytes of the file and returns
// the name of the first matching signature (in table order). ok is false
// when no signature matches; the file is then presumed to be text.
//
// Bytes past the end of a short file compare as zero, so a wildcard
// matches past EOF while a concrete non-zero pattern byte does not.
func Classify(path string, table *Table) (name string, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, errors.Errorf("%w: opening %s: %w", ErrClassify, path, err)
	}
	defer f.Close()

	// The buffer is zero-initialized; a partial read leaves the virtual
	// zero bytes in place.
	buf := make([]byte, table.MaxPrefix())
	if _, err := io.ReadFull(f, buf); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", false, errors.Errorf("%w: reading %s: %w", ErrClassify, path, err)
	}

	for _, n := range table.names {
		sig := table.sigs[n]
		if matchAt(buf, sig) {
			return sig.Name, true, nil
		}
	}
	return "", false, nil
}

// matchAt tests one signature against the prefix buffer.
func matchAt(buf []byte, sig Signature) bool {
	for i, want := range sig.Pattern {
		if want == Wildcard {
			continue
		}
		if buf[sig.Offset+i] != byte(want) {
			return false
		}
	}
	return true
}

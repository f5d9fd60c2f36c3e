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
	"bufio"
	"io"

	"golang.org/x/text/transform"
)

// maxLineBytes bounds a single decoded line; anything longer makes the
// scanner report bufio.ErrTooLong instead of allocating without limit.
const maxLineBytes = 4 * 1024 * 1024

// 📖 NewLineScanner wraps the raw byte stream with the decoder for the
// key and returns a scanner yielding decoded lines. Lines end at CR, LF,
// or CRLF; the terminator is stripped from the yielded line.
func (r *Registry) NewLineScanner(src io.Reader, k Key) (*bufio.Scanner, error) {
	dec, err := r.NewDecoder(k)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(transform.NewReader(src, dec))
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	sc.Split(scanAnyLine)
	return sc, nil
}

// scanAnyLine is a bufio.SplitFunc splitting on CR, LF, or CRLF. A CR at
// the end of the buffer waits for one more byte so CRLF is not split in
// two, unless the stream is at EOF.
func scanAnyLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			return 0, nil, nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

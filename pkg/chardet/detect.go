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
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// DefaultSampleKB is the size of the detection sample in KiB.
const DefaultSampleKB = 4

const esc = 0x1B

// bomTable lists recognized byte-order marks in match order. The 4-byte
// UTF-32 marks precede the 2-byte UTF-16 marks so the UTF-32LE mark is
// not mistaken for UTF-16LE.
var bomTable = []struct {
	bom []byte
	key Key
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8BOM},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, UTF32LE},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, UTF32BE},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// jisEscapes are the ISO-2022-JP escape sequences whose presence marks a
// JIS-encoded stream.
var jisEscapes = [][]byte{
	{esc, '$', '@'},
	{esc, '$', 'B'},
	{esc, '(', 'B'},
	{esc, '(', 'J'},
	{esc, '(', 'I'},
	{esc, '$', '(', 'D'},
	{esc, '&', '@', esc, '$', 'B'},
}

// 🔍 Detect determines the encoding of the file: BOM sniff, then ASCII
// fast path, then JIS escape scan, then statistical scoring of SJIS /
// EUC-JP / UTF-8 evidence over a head/middle/tail sample. When no
// category wins strictly, the registry default is returned.
func (r *Registry) Detect(path string) (Key, error) {
	return r.DetectSample(path, DefaultSampleKB)
}

// DetectSample is Detect with an explicit sample size in KiB.
func (r *Registry) DetectSample(path string, sampleKB int) (Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", errors.Errorf("stat %s: %w", path, err)
	}
	if st.Size() == 0 {
		return ASCII, nil
	}

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", errors.Errorf("reading %s: %w", path, err)
	}
	head = head[:n]
	for _, e := range bomTable {
		if bytes.HasPrefix(head, e.bom) {
			return e.key, nil
		}
	}

	sample, err := readSample(f, st.Size(), sampleKB*1024)
	if err != nil {
		return "", errors.Errorf("sampling %s: %w", path, err)
	}

	if isASCII(sample) {
		return ASCII, nil
	}
	if hasJISEscape(sample) {
		return JIS, nil
	}

	sjis := scoreSJIS(sample)
	euc := scoreEUC(sample)
	utf8 := scoreUTF8(sample)
	switch {
	case sjis > euc && sjis > utf8:
		return SJIS, nil
	case euc > sjis && euc > utf8:
		return EUC, nil
	case utf8 > sjis && utf8 > euc:
		return UTF8N, nil
	}
	return r.def, nil
}

// readSample assembles up to min(size, max) bytes from the head, middle,
// and tail of the file. Small files are read whole; the extra thirds are
// only worth taking when the sample is large enough to split.
func readSample(f *os.File, size int64, max int) ([]byte, error) {
	if size <= int64(max) {
		buf := make([]byte, size)
		if _, err := io.ReadFull(io.NewSectionReader(f, 0, size), buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	third := max / 3
	offsets := []int64{0}
	if max > 2*1024 {
		offsets = append(offsets, size/2-int64(third)/2)
	}
	if max > 1024 {
		offsets = append(offsets, size-int64(third))
	}

	buf := make([]byte, 0, len(offsets)*third)
	chunk := make([]byte, third)
	for _, off := range offsets {
		if _, err := io.ReadFull(io.NewSectionReader(f, off, int64(third)), chunk); err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
	}
	return buf, nil
}

// isASCII reports whether the sample is pure 7-bit with no ESC byte.
func isASCII(sample []byte) bool {
	for _, b := range sample {
		if b == esc || b >= 0x80 {
			return false
		}
	}
	return true
}

// hasJISEscape reports whether any ISO-2022-JP escape sequence occurs.
func hasJISEscape(sample []byte) bool {
	for i := 0; i < len(sample); i++ {
		if sample[i] != esc {
			continue
		}
		for _, seq := range jisEscapes {
			if bytes.HasPrefix(sample[i:], seq) {
				return true
			}
		}
	}
	return false
}

// scoreSJIS sums the byte length of valid Shift_JIS double-byte
// sequences: lead [81..9F]∪[E0..FC], trail [40..7E]∪[80..FC].
func scoreSJIS(sample []byte) int {
	score := 0
	for i := 0; i+1 < len(sample); {
		lead, trail := sample[i], sample[i+1]
		leadOK := (lead >= 0x81 && lead <= 0x9F) || (lead >= 0xE0 && lead <= 0xFC)
		trailOK := (trail >= 0x40 && trail <= 0x7E) || (trail >= 0x80 && trail <= 0xFC)
		if leadOK && trailOK {
			score += 2
			i += 2
			continue
		}
		i++
	}
	return score
}

// scoreEUC sums the byte length of valid EUC-JP sequences: two-byte
// [A1..FE][A1..FE], half-width kana 8E [A1..DF], and the three-byte
// JIS X 0212 form 8F [A1..FE][A1..FE].
func scoreEUC(sample []byte) int {
	score := 0
	for i := 0; i+1 < len(sample); {
		b0, b1 := sample[i], sample[i+1]
		switch {
		case b0 == 0x8F && i+2 < len(sample) &&
			b1 >= 0xA1 && b1 <= 0xFE && sample[i+2] >= 0xA1 && sample[i+2] <= 0xFE:
			score += 3
			i += 3
		case b0 == 0x8E && b1 >= 0xA1 && b1 <= 0xDF:
			score += 2
			i += 2
		case b0 >= 0xA1 && b0 <= 0xFE && b1 >= 0xA1 && b1 <= 0xFE:
			score += 2
			i += 2
		default:
			i++
		}
	}
	return score
}

// scoreUTF8 sums the byte length of valid two- and three-byte UTF-8
// sequences.
func scoreUTF8(sample []byte) int {
	score := 0
	cont := func(b byte) bool { return b >= 0x80 && b <= 0xBF }
	for i := 0; i+1 < len(sample); {
		b0, b1 := sample[i], sample[i+1]
		switch {
		case b0 >= 0xC0 && b0 <= 0xDF && cont(b1):
			score += 2
			i += 2
		case b0 >= 0xE0 && b0 <= 0xEF && i+2 < len(sample) && cont(b1) && cont(sample[i+2]):
			score += 3
			i += 3
		default:
			i++
		}
	}
	return score
}

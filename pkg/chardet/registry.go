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
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// 🔑 Key identifies one supported character encoding.
type Key string

const (
	ASCII   Key = "ASCII"
	UTF8N   Key = "UTF8N"
	UTF8BOM Key = "UTF8BOM"
	UTF16LE Key = "UTF16LE"
	UTF16BE Key = "UTF16BE"
	UTF32LE Key = "UTF32LE"
	UTF32BE Key = "UTF32BE"
	SJIS    Key = "SJIS"
	JIS     Key = "JIS"
	EUC     Key = "EUC"
)

// 🗂️ Info describes one registered encoding.
type Info struct {
	Key      Key
	CodePage int
	HasBOM   bool
	Display  string
	Default  bool
}

// 📚 Registry is the fixed encoding table: key → code page, BOM flag,
// display name, default flag. Exactly one entry carries Default=true;
// it is the fallback when auto-detection is inconclusive.
type Registry struct {
	infos map[Key]Info
	order []Key
	def   Key
}

// 🏭 NewRegistry builds the registry. Shift_JIS is the default, matching
// the tool's Windows origin.
func NewRegistry() *Registry {
	r := &Registry{infos: make(map[Key]Info)}
	for _, info := range []Info{
		{Key: ASCII, CodePage: 20127, Display: "ASCII"},
		{Key: UTF8N, CodePage: 65001, Display: "UTF-8N"},
		{Key: UTF8BOM, CodePage: 65001, HasBOM: true, Display: "UTF-8"},
		{Key: UTF16LE, CodePage: 1200, HasBOM: true, Display: "UTF-16LE"},
		{Key: UTF16BE, CodePage: 1201, HasBOM: true, Display: "UTF-16BE"},
		{Key: UTF32LE, CodePage: 12000, HasBOM: true, Display: "UTF-32LE"},
		{Key: UTF32BE, CodePage: 12001, HasBOM: true, Display: "UTF-32BE"},
		{Key: SJIS, CodePage: 932, Display: "Shift_JIS", Default: true},
		{Key: JIS, CodePage: 50220, Display: "JIS"},
		{Key: EUC, CodePage: 51932, Display: "EUC-JP"},
	} {
		r.infos[info.Key] = info
		r.order = append(r.order, info.Key)
		if info.Default {
			r.def = info.Key
		}
	}
	return r
}

// Info returns the record for a key.
func (r *Registry) Info(k Key) (Info, bool) {
	info, ok := r.infos[k]
	return info, ok
}

// Default returns the fallback key.
func (r *Registry) Default() Key {
	return r.def
}

// Keys returns all keys in registration order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.order))
	copy(out, r.order)
	return out
}

// 🔍 Lookup resolves a user-supplied name (key or display name, case
// insensitive) to a registry key.
func (r *Registry) Lookup(name string) (Key, bool) {
	for _, k := range r.order {
		info := r.infos[k]
		if strings.EqualFold(name, string(k)) || strings.EqualFold(name, info.Display) {
			return k, true
		}
	}
	return "", false
}

// 🧰 NewDecoder builds a stream decoder for the key. All x/text decoders
// substitute the replacement rune for malformed input rather than
// aborting, which is the tolerance the line scanner relies on.
func (r *Registry) NewDecoder(k Key) (*encoding.Decoder, error) {
	switch k {
	case ASCII, UTF8N:
		return unicode.UTF8.NewDecoder(), nil
	case UTF8BOM:
		return unicode.UTF8BOM.NewDecoder(), nil
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), nil
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder(), nil
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder(), nil
	case SJIS:
		return japanese.ShiftJIS.NewDecoder(), nil
	case JIS:
		return japanese.ISO2022JP.NewDecoder(), nil
	case EUC:
		return japanese.EUCJP.NewDecoder(), nil
	}
	return nil, errors.Errorf("unknown encoding key %q", k)
}

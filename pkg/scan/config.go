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
	"fmt"
	"regexp"
	"time"

	"github.com/walteh/jgrep/pkg/chardet"
	"github.com/walteh/jgrep/pkg/magic"
)

// Auto selects per-file encoding detection instead of a fixed codepage.
const Auto chardet.Key = "AUTO"

// ⚙️ Config is the immutable per-run configuration. It is built once at
// startup and shared read-only by every worker; nothing in it may be
// mutated after Run starts.
type Config struct {
	Regex             *regexp.Regexp
	TextOnly          bool
	Signatures        *magic.Table
	Encodings         *chardet.Registry
	Codepage          chardet.Key // Auto or a specific registry key
	FirstMatchOnly    bool
	OutputMatchedPart bool
	Parallelism       int
	Quiet             bool
	Debug             bool
	StartTime         time.Time
}

// 🎯 Match is one emitted record. Line and Col are 1-based; Col counts
// decoded characters.
type Match struct {
	Path     string
	Line     int
	Col      int
	Encoding string
	Payload  string
}

// String renders the editor-compatible record form:
// "<absPath>(<line>,<col>)  [<encDisplay>]: <payload>".
func (m Match) String() string {
	return fmt.Sprintf("%s(%d,%d)  [%s]: %s", m.Path, m.Line, m.Col, m.Encoding, m.Payload)
}

// Elapsed formats a duration as HH:MM:SS for the trailer and progress
// output.
func Elapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

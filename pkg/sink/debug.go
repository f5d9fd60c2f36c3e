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

package sink

import (
	"fmt"
	"os"
	"time"
)

// 🐛 DebugSink mirrors the Sink contract for the optional debug log.
// Every line is stamped with timestamp, process id, and worker id. A nil
// *DebugSink is valid and discards everything, so callers never need to
// branch on whether debug is enabled.
type DebugSink struct {
	s   *Sink
	pid int
}

// 🏭 NewDebug opens the debug log next to the result artifact.
func NewDebug(path string, flushEvery time.Duration) (*DebugSink, error) {
	s, err := New(path, flushEvery)
	if err != nil {
		return nil, err
	}
	return &DebugSink{s: s, pid: os.Getpid()}, nil
}

// 📝 Log appends one stamped line. Write errors are swallowed: losing a
// debug line must never fail the scan.
func (d *DebugSink) Log(worker, line string) {
	if d == nil {
		return
	}
	stamp := time.Now().Format("2006-01-02 15:04:05.000")
	_ = d.s.WriteLine(fmt.Sprintf("%s pid=%d worker=%s: %s", stamp, d.pid, worker, line))
}

// Close closes the underlying sink. Nil-safe and idempotent.
func (d *DebugSink) Close() error {
	if d == nil {
		return nil
	}
	return d.s.Close()
}

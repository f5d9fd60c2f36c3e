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
	"bufio"
	"os"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

// DefaultFlushInterval is how often the background timer flushes the
// sink so an abnormal exit loses at most one interval of output.
const DefaultFlushInterval = 30 * time.Second

// 🗃️ Sink is an append-only, line-oriented text writer. A single writer
// goroutine appends; a background timer flushes concurrently, so every
// touch of the underlying writer takes the mutex. Close is idempotent.
type Sink struct {
	mu        sync.Mutex
	f         *os.File
	w         *bufio.Writer
	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// 🏭 New creates the output file (truncating any previous run) and
// starts the flush timer. Open failures are fatal to the run.
func New(path string, flushEvery time.Duration) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Errorf("opening sink %s: %w", path, err)
	}
	if flushEvery <= 0 {
		flushEvery = DefaultFlushInterval
	}
	s := &Sink{
		f:      f,
		w:      bufio.NewWriter(f),
		ticker: time.NewTicker(flushEvery),
		done:   make(chan struct{}),
	}
	go s.flushLoop()
	return s, nil
}

func (s *Sink) flushLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.mu.Lock()
			// Flush failures are swallowed; the final flush on Close
			// reports them.
			_ = s.w.Flush()
			s.mu.Unlock()
		}
	}
}

// 📝 WriteLine appends one complete record followed by a newline.
func (s *Sink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.WriteString(line); err != nil {
		return errors.Errorf("writing sink: %w", err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return errors.Errorf("writing sink: %w", err)
	}
	return nil
}

// WriteBlank appends an empty line.
func (s *Sink) WriteBlank() error {
	return s.WriteLine("")
}

// 🚪 Close stops the flush timer, flushes once more, and releases the
// file. Safe to call more than once.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.w.Flush(); err != nil {
			s.closeErr = errors.Errorf("flushing sink: %w", err)
		}
		if err := s.f.Close(); err != nil && s.closeErr == nil {
			s.closeErr = errors.Errorf("closing sink: %w", err)
		}
	})
	return s.closeErr
}

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
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkWriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := New(path, time.Hour)
	require.NoError(t, err, "New should succeed")

	require.NoError(t, s.WriteLine("first"), "write should succeed")
	require.NoError(t, s.WriteBlank(), "blank write should succeed")
	require.NoError(t, s.WriteLine("second"), "write should succeed")

	require.NoError(t, s.Close(), "close should succeed")
	assert.NoError(t, s.Close(), "close should be idempotent")

	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading sink file")
	assert.Equal(t, "first\n\nsecond\n", string(data), "content should be line-oriented in order")
}

func TestSinkTimerFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := New(path, 20*time.Millisecond)
	require.NoError(t, err, "New should succeed")
	defer s.Close()

	require.NoError(t, s.WriteLine("early"), "write should succeed")

	// The background timer should land the line on disk well before any
	// explicit Close.
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "early")
	}, 2*time.Second, 10*time.Millisecond, "timer flush should persist the line")
}

func TestSinkWriteConcurrentWithFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s, err := New(path, time.Millisecond)
	require.NoError(t, err, "New should succeed")

	// Hammer writes while the flush timer fires; the mutex must keep
	// the two from interleaving mid-line.
	for i := 0; i < 500; i++ {
		require.NoError(t, s.WriteLine(fmt.Sprintf("line %d", i)), "write should succeed")
	}
	require.NoError(t, s.Close(), "close should succeed")

	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading sink file")
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 500, "every line should land exactly once")
	assert.Equal(t, "line 0", lines[0], "order should be preserved")
	assert.Equal(t, "line 499", lines[499], "order should be preserved")
}

func TestDebugSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	d, err := NewDebug(path, time.Hour)
	require.NoError(t, err, "NewDebug should succeed")

	d.Log("w3", "something happened")
	require.NoError(t, d.Close(), "close should succeed")

	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading debug file")
	line := string(data)
	assert.Contains(t, line, fmt.Sprintf("pid=%d", os.Getpid()), "line should carry the process id")
	assert.Contains(t, line, "worker=w3", "line should carry the worker id")
	assert.Contains(t, line, "something happened", "line should carry the message")
}

func TestDebugSinkNilSafe(t *testing.T) {
	var d *DebugSink
	assert.NotPanics(t, func() { d.Log("w0", "dropped") }, "nil debug sink should discard")
	assert.NoError(t, d.Close(), "nil close should be a no-op")
}

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
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/jgrep/pkg/sink"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📣 ProgressFunc is called after each drained job when the run is not
// quiet. Rendering is the caller's concern.
type ProgressFunc func(completed, total int, elapsed time.Duration)

// 🎛️ Orchestrator dispatches per-file scan jobs over a bounded worker
// pool and merges their outputs into the result sink in input order.
//
// Files are grouped into contiguous batches of 2×parallelism: a batch is
// fully dispatched, then fully drained before the next batch begins.
// That caps the number of pending temp files while keeping the pool
// saturated, and draining in submission order makes the aggregated
// output order equal the input file order regardless of how workers
// interleave.
type Orchestrator struct {
	cfg      *Config
	results  *sink.Sink
	debug    *sink.DebugSink
	progress ProgressFunc
}

// 🏭 NewOrchestrator wires the orchestrator. debug may be nil (debug
// disabled); progress may be nil.
func NewOrchestrator(cfg *Config, results *sink.Sink, debug *sink.DebugSink, progress ProgressFunc) *Orchestrator {
	return &Orchestrator{cfg: cfg, results: results, debug: debug, progress: progress}
}

// 🧾 job is one dispatched file scan. The worker owns the two temp files
// until done is closed; the orchestrator drains and deletes them.
type job struct {
	path     string
	outPath  string
	logPath  string
	worker   string
	done     chan struct{}
	panicked bool
}

// 🏃 Run scans every file and returns the total match count. The result
// sink receives match records in input-file order followed by the
// trailer line.
func (o *Orchestrator) Run(ctx context.Context, files []string) (int, error) {
	logger := zerolog.Ctx(ctx)

	workDir := filepath.Join(os.TempDir(), "jgrep", strconv.Itoa(os.Getpid()))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return 0, errors.Errorf("creating work dir: %w", err)
	}
	// Leaked temp files are tolerable, so removal errors are ignored.
	defer func() { _ = os.RemoveAll(workDir) }()

	total := len(files)
	completed := 0
	matches := 0
	batchSize := 2 * o.cfg.Parallelism

	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)

		var g errgroup.Group
		g.SetLimit(o.cfg.Parallelism)

		batch := make([]*job, 0, end-start)
		for i, path := range files[start:end] {
			id := uuid.NewString()
			j := &job{
				path:    path,
				outPath: filepath.Join(workDir, id+".txt"),
				logPath: filepath.Join(workDir, id+".log"),
				worker:  fmt.Sprintf("w%d", start+i),
				done:    make(chan struct{}),
			}
			batch = append(batch, j)
			g.Go(func() error {
				o.runJob(j)
				return nil
			})
		}

		// Join in submission order so the merge order is the input order.
		for _, j := range batch {
			<-j.done
			n, err := o.drain(j)
			if err != nil {
				return matches, err
			}
			matches += n
			completed++
			if !o.cfg.Quiet && o.progress != nil {
				o.progress(completed, total, time.Since(o.cfg.StartTime))
			}
		}
		_ = g.Wait()
	}

	logger.Debug().Int("files", total).Int("matches", matches).Msg("scan complete")

	trailer := fmt.Sprintf("%d items matched. - Elapsed: %s", matches, Elapsed(time.Since(o.cfg.StartTime)))
	if err := o.results.WriteBlank(); err != nil {
		return matches, err
	}
	if err := o.results.WriteLine(trailer); err != nil {
		return matches, err
	}
	return matches, nil
}

// runJob executes one file scan inside a worker slot. Panics are caught
// at this boundary: the job still completes, with the stack in its debug
// log and zero matches counted.
func (o *Orchestrator) runJob(j *job) {
	defer close(j.done)

	outF, err := os.Create(j.outPath)
	if err != nil {
		o.debug.Log(j.worker, fmt.Sprintf("creating temp output: %v", err))
		j.panicked = true
		return
	}
	defer outF.Close()
	logF, err := os.Create(j.logPath)
	if err != nil {
		o.debug.Log(j.worker, fmt.Sprintf("creating temp log: %v", err))
		j.panicked = true
		return
	}
	defer logF.Close()

	out := bufio.NewWriter(outF)
	dbg := bufio.NewWriter(logF)
	defer out.Flush()
	defer dbg.Flush()

	defer func() {
		if r := recover(); r != nil {
			j.panicked = true
			fmt.Fprintf(dbg, "worker panic scanning %s: %v\n%s", j.path, r, debug.Stack())
		}
	}()

	ScanFile(o.cfg, j.path, out, dbg)
}

// drain appends the job's output to the result sink (counting records),
// forwards its debug log when debug is enabled, and deletes both temp
// files. A panicked job contributes zero records.
func (o *Orchestrator) drain(j *job) (int, error) {
	defer os.Remove(j.outPath)
	defer os.Remove(j.logPath)

	count := 0
	if !j.panicked {
		lines, err := readLines(j.outPath)
		if err != nil {
			return 0, errors.Errorf("draining job for %s: %w", j.path, err)
		}
		for _, line := range lines {
			if err := o.results.WriteLine(line); err != nil {
				return count, err
			}
			count++
		}
	}

	if o.cfg.Debug {
		lines, err := readLines(j.logPath)
		if err != nil {
			return count, errors.Errorf("draining log for %s: %w", j.path, err)
		}
		for _, line := range lines {
			o.debug.Log(j.worker, line)
		}
	}
	return count, nil
}

// readLines returns the file's lines; a missing file reads as empty
// (the job may have died before creating its temp files).
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

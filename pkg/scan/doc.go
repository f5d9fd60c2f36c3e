/*
Package scan drives the parallel search: per-file scanning and the
batched orchestration that aggregates worker output in input order.

	 (file list, Config)
	         |
	   +-----v------+     dispatch      +--------+
	   | Orchestr.  +------------------>+ worker |--> <uuid>.txt
	   |  batches   |   2 x parallel    +--------+    <uuid>.log
	   +-----+------+
	         | drain in submission order
	   +-----v------+
	   |    Sink    |
	   +------------+

🎯 Purpose:
- Runs the per-file pipeline: binary filter, encoding resolution,
  line-oriented regex match, formatted emission
- Bounds concurrency with a worker pool of Parallelism slots
- Merges per-job temp output so the final artifact order equals the
  input file order, independent of worker interleaving

🔄 Flow:
1. Files are grouped into contiguous batches of 2×parallelism
2. Each batch is fully dispatched, then fully drained before the next
3. Each worker writes only its own temp files; the orchestrator is the
   only writer of the result sink
4. Per-file failures are logged and skipped; the run continues

⚡ Key Responsibilities:
- ScanFile: the deterministic per-file sequence
- Orchestrator: batching, joining, draining, progress
- Config: the immutable per-run broadcast state

📝 Design Philosophy:
Workers share nothing mutable. The signature table, encoding registry,
and compiled regex are built once and aliased read-only, so no
synchronization exists on the hot path; ordering is restored at drain
time instead of coordinated during execution.
*/
package scan

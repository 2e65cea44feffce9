package core

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// SystemStatus is the read-only snapshot served at GET /internal/status
// (§4.12, §6). It replaces the reference codebase's Redis-published
// WorkerHeartbeat/QueueMetrics pair: this core has no queue or worker pool
// (§5), so there is nothing to publish across processes, only an in-process
// record summarizing the judging this instance has done.
type SystemStatus struct {
	InstanceID          string `json:"instance_id"`
	PID                 int    `json:"pid"`
	UptimeSeconds       int64  `json:"uptime_seconds"`
	JobsJudged          int64  `json:"jobs_judged"`
	CurrentJobID        *int   `json:"current_job_id,omitempty"`
	LastJobID           *int   `json:"last_job_id,omitempty"`
	LastJudgeDurationMs int64  `json:"last_judge_duration_ms"`
	NumGoroutine        int    `json:"num_goroutine"`
	MemoryRSSBytes      uint64 `json:"memory_rss_bytes"`
}

// Heartbeat tracks this process's judging throughput for SystemStatus. It is
// updated from the submission handler around every Judge call, not from a
// background ticker, since judging is synchronous and there is no separate
// worker goroutine to poll (§5 Blocking/suspension).
type Heartbeat struct {
	instanceID string
	startedAt  time.Time

	mu          sync.Mutex
	currentJob  *int
	lastJob     *int
	lastDuration time.Duration

	jobsJudged int64
}

func NewHeartbeat(instanceID string) *Heartbeat {
	return &Heartbeat{instanceID: instanceID, startedAt: time.Now()}
}

// JobStarted marks id as in-flight.
func (h *Heartbeat) JobStarted(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentJob = &id
}

// JobFinished clears the in-flight marker and records throughput counters.
func (h *Heartbeat) JobFinished(id int, duration time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentJob = nil
	h.lastJob = &id
	h.lastDuration = duration
	atomic.AddInt64(&h.jobsJudged, 1)
}

// Snapshot renders the current SystemStatus.
func (h *Heartbeat) Snapshot() SystemStatus {
	h.mu.Lock()
	current := h.currentJob
	last := h.lastJob
	duration := h.lastDuration
	h.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return SystemStatus{
		InstanceID:          h.instanceID,
		PID:                 os.Getpid(),
		UptimeSeconds:       int64(time.Since(h.startedAt).Seconds()),
		JobsJudged:          atomic.LoadInt64(&h.jobsJudged),
		CurrentJobID:        current,
		LastJobID:           last,
		LastJudgeDurationMs: duration.Milliseconds(),
		NumGoroutine:        runtime.NumGoroutine(),
		MemoryRSSBytes:      ms.Sys,
	}
}

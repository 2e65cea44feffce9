package core

import (
	"testing"
	"time"
)

func TestHeartbeatTracksInFlightAndLastJob(t *testing.T) {
	hb := NewHeartbeat("test-instance")

	snap := hb.Snapshot()
	if snap.JobsJudged != 0 || snap.CurrentJobID != nil {
		t.Fatalf("expected a fresh heartbeat to report no jobs, got %+v", snap)
	}

	hb.JobStarted(7)
	snap = hb.Snapshot()
	if snap.CurrentJobID == nil || *snap.CurrentJobID != 7 {
		t.Fatalf("expected current job id 7, got %+v", snap.CurrentJobID)
	}

	hb.JobFinished(7, 15*time.Millisecond)
	snap = hb.Snapshot()
	if snap.CurrentJobID != nil {
		t.Fatalf("expected current job id to clear after JobFinished, got %+v", snap.CurrentJobID)
	}
	if snap.LastJobID == nil || *snap.LastJobID != 7 {
		t.Fatalf("expected last job id 7, got %+v", snap.LastJobID)
	}
	if snap.JobsJudged != 1 {
		t.Fatalf("expected jobs judged counter to be 1, got %d", snap.JobsJudged)
	}
	if snap.LastJudgeDurationMs != 15 {
		t.Fatalf("expected last judge duration 15ms, got %d", snap.LastJudgeDurationMs)
	}
}

func TestHeartbeatInstanceIDSurvivesSnapshot(t *testing.T) {
	hb := NewHeartbeat("abc-123")
	if got := hb.Snapshot().InstanceID; got != "abc-123" {
		t.Fatalf("expected instance id to round-trip, got %q", got)
	}
}

package judge

import (
	"testing"
	"time"
)

func TestJobRegistryCreateAssignsDenseIDs(t *testing.T) {
	jobs := NewJobRegistry()
	j0 := jobs.Create(Job{Submission: JobRequest{UserID: 1}})
	j1 := jobs.Create(Job{Submission: JobRequest{UserID: 2}})
	if j0.ID != 0 || j1.ID != 1 {
		t.Fatalf("expected dense ids 0,1, got %d,%d", j0.ID, j1.ID)
	}
}

func TestJobRegistryCountSubmissionsScopedToTriple(t *testing.T) {
	jobs := NewJobRegistry()
	jobs.Create(Job{Submission: JobRequest{UserID: 1, ProblemID: 1, ContestID: 1}})
	jobs.Create(Job{Submission: JobRequest{UserID: 1, ProblemID: 1, ContestID: 1}})
	jobs.Create(Job{Submission: JobRequest{UserID: 1, ProblemID: 2, ContestID: 1}})
	jobs.Create(Job{Submission: JobRequest{UserID: 2, ProblemID: 1, ContestID: 1}})

	if n := jobs.CountSubmissions(1, 1, 1); n != 2 {
		t.Fatalf("expected 2 matching submissions, got %d", n)
	}
	if n := jobs.CountSubmissions(1, 2, 1); n != 1 {
		t.Fatalf("expected 1 matching submission, got %d", n)
	}
}

func TestJobRegistryQueryFiltersByState(t *testing.T) {
	jobs := NewJobRegistry()
	jobs.Create(Job{Submission: JobRequest{UserID: 1}, State: Finished, Result: Accepted})
	jobs.Create(Job{Submission: JobRequest{UserID: 1}, State: Queueing})

	state := Finished
	results := jobs.Query(JobFilter{State: &state}, func(int) string { return "" })
	if len(results) != 1 {
		t.Fatalf("expected 1 finished job, got %d", len(results))
	}
	if results[0].State != Finished {
		t.Fatalf("expected Finished job, got %v", results[0].State)
	}
}

func TestJobRegistryQueryFiltersByUserName(t *testing.T) {
	jobs := NewJobRegistry()
	jobs.Create(Job{Submission: JobRequest{UserID: 1}})
	jobs.Create(Job{Submission: JobRequest{UserID: 2}})

	names := map[int]string{1: "alice", 2: "bob"}
	want := "alice"
	results := jobs.Query(JobFilter{UserName: &want}, func(id int) string { return names[id] })
	if len(results) != 1 || results[0].Submission.UserID != 1 {
		t.Fatalf("expected only alice's job, got %+v", results)
	}
}

func TestJobRegistryQueryFiltersByTimeWindow(t *testing.T) {
	jobs := NewJobRegistry()
	base := time.Now().UTC()
	jobs.Create(Job{Submission: JobRequest{UserID: 1}, CreatedTime: base.Add(-time.Hour)})
	jobs.Create(Job{Submission: JobRequest{UserID: 1}, CreatedTime: base})
	jobs.Create(Job{Submission: JobRequest{UserID: 1}, CreatedTime: base.Add(time.Hour)})

	from := base.Add(-time.Minute)
	to := base.Add(30 * time.Minute)
	results := jobs.Query(JobFilter{From: &from, To: &to}, nil)
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 job within window, got %d", len(results))
	}
}

func TestJobRegistryDeleteOnlyAffectsQueueingJobs(t *testing.T) {
	jobs := NewJobRegistry()
	finished := jobs.Create(Job{Submission: JobRequest{UserID: 1}, State: Finished})
	err := jobs.Delete(finished.ID)
	if KindOf(err) != KindInvalidState {
		t.Fatalf("expected KindInvalidState deleting a Finished job, got %v (err=%v)", KindOf(err), err)
	}
}

func TestJobRegistryGetUnknownID(t *testing.T) {
	jobs := NewJobRegistry()
	_, err := jobs.Get(42)
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v (err=%v)", KindOf(err), err)
	}
}

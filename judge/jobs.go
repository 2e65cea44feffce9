package judge

import (
	"sync"
	"time"
)

// JobFilter is a conjunction over optional predicates for Query (§4.6).
type JobFilter struct {
	ProblemID *int
	ContestID *int
	UserID    *int
	UserName  *string
	Language  *string
	From      *time.Time
	To        *time.Time
	State     *State
	Result    *Result
}

// JobRegistry stores jobs in creation order behind a single mutex (§5).
type JobRegistry struct {
	mu   sync.Mutex
	jobs []Job
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{}
}

// Restore inserts a job loaded from the persistence mirror at startup. The
// mirror is rehydrated in ascending job-id order, so each Restore call is
// expected to extend the slice by exactly one dense id; a gap indicates a
// corrupted mirror and is a programming error the caller should surface.
func (r *JobRegistry) Restore(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

// Create appends job with the next dense id and returns the stored copy,
// whose ID field holds that id.
func (r *JobRegistry) Create(job Job) Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = len(r.jobs)
	r.jobs = append(r.jobs, job)
	return job
}

// NextID previews the id the next Create call will assign.
func (r *JobRegistry) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *JobRegistry) Get(id int) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.jobs) {
		return Job{}, ErrNotFound("job not found")
	}
	return r.jobs[id], nil
}

// Replace overwrites an existing job's fields via mutate, which receives a
// pointer to the stored job and must not change its ID or CreatedTime.
func (r *JobRegistry) Replace(id int, mutate func(*Job)) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.jobs) {
		return Job{}, ErrNotFound("job not found")
	}
	created := r.jobs[id].CreatedTime
	mutate(&r.jobs[id])
	r.jobs[id].ID = id
	r.jobs[id].CreatedTime = created
	return r.jobs[id], nil
}

// Delete removes a job only when it is still Queueing. In this synchronous
// core jobs never observably stay Queueing, so this is effectively dead
// code, kept faithful to the spec's contract (see Design Notes).
func (r *JobRegistry) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.jobs) {
		return ErrNotFound("job not found")
	}
	if r.jobs[id].State != Queueing {
		return ErrInvalidState("job is not in Queueing state")
	}
	r.jobs[id].State = Canceled
	return nil
}

// CountSubmissions counts prior jobs for a (user, problem, contest) triple.
func (r *JobRegistry) CountSubmissions(userID, problemID, contestID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if j.Submission.UserID == userID && j.Submission.ProblemID == problemID && j.Submission.ContestID == contestID {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of all stored jobs in ascending id order.
func (r *JobRegistry) Snapshot() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

// Query filters the snapshot per filter and returns ascending-id results.
func (r *JobRegistry) Query(filter JobFilter, nameOf func(userID int) string) []Job {
	jobs := r.Snapshot()
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if !jobMatches(j, filter, nameOf) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func jobMatches(j Job, f JobFilter, nameOf func(int) string) bool {
	if f.ProblemID != nil && j.Submission.ProblemID != *f.ProblemID {
		return false
	}
	if f.ContestID != nil && j.Submission.ContestID != *f.ContestID {
		return false
	}
	if f.UserID != nil && j.Submission.UserID != *f.UserID {
		return false
	}
	if f.UserName != nil && nameOf != nil && nameOf(j.Submission.UserID) != *f.UserName {
		return false
	}
	if f.Language != nil && j.Submission.Language != *f.Language {
		return false
	}
	if f.From != nil && j.CreatedTime.Before(*f.From) {
		return false
	}
	if f.To != nil && j.CreatedTime.After(*f.To) {
		return false
	}
	if f.State != nil && j.State != *f.State {
		return false
	}
	if f.Result != nil && j.Result != *f.Result {
		return false
	}
	return true
}

package judge

import (
	"context"
	"time"
)

// ProblemSet is the closed-at-load-time catalog of problems and languages
// (§3 "Lifecycle": read-only after process start).
type ProblemSet struct {
	Problems  map[int]Problem
	Languages map[string]Language
}

func (p ProblemSet) KnownProblem(id int) bool { _, ok := p.Problems[id]; return ok }

// Service wires the gate, executor and registries together into the
// operations the HTTP surface calls (§4.6 create/rejudge/delete, §4.4 judge).
type Service struct {
	Set      ProblemSet
	Users    *UserRegistry
	Contests *ContestRegistry
	Jobs     *JobRegistry
	Exec     *Executor
}

func NewService(set ProblemSet, users *UserRegistry, contests *ContestRegistry, jobs *JobRegistry, exec *Executor) *Service {
	return &Service{Set: set, Users: users, Contests: contests, Jobs: jobs, Exec: exec}
}

func (s *Service) gate() *Gate {
	return &Gate{Languages: s.Set.Languages, Problems: s.Set.Problems, Users: s.Users, Contests: s.Contests, Jobs: s.Jobs}
}

// Submit admits req, judges it synchronously, and stores the resulting job.
func (s *Service) Submit(ctx context.Context, req JobRequest) (Job, error) {
	now := time.Now().UTC()
	if err := s.gate().Admit(req, now); err != nil {
		return Job{}, err
	}
	problem := s.Set.Problems[req.ProblemID]
	id := s.Jobs.NextID()
	job := s.Exec.Judge(ctx, req, problem, id, now)
	return s.Jobs.Create(job), nil
}

// Get returns one job by id.
func (s *Service) Get(id int) (Job, error) { return s.Jobs.Get(id) }

// Query returns jobs matching filter in ascending id order.
func (s *Service) Query(filter JobFilter) []Job {
	return s.Jobs.Query(filter, s.Users.NameOf)
}

// Rejudge reruns the executor on the stored submission, preserving
// created_time and replacing cases/result/score/updated_time (§4.6).
func (s *Service) Rejudge(ctx context.Context, id int) (Job, error) {
	existing, err := s.Jobs.Get(id)
	if err != nil {
		return Job{}, err
	}
	problem, ok := s.Set.Problems[existing.Submission.ProblemID]
	if !ok {
		return Job{}, ErrInternal("rejudge: problem no longer configured")
	}
	rejudged := s.Exec.Judge(ctx, existing.Submission, problem, id, existing.CreatedTime)
	return s.Jobs.Replace(id, func(j *Job) {
		j.State = rejudged.State
		j.Result = rejudged.Result
		j.Score = rejudged.Score
		j.Cases = rejudged.Cases
		j.UpdatedTime = rejudged.UpdatedTime
		j.Warning = rejudged.Warning
	})
}

// Delete cancels a job, only permitted while Queueing (§4.6).
func (s *Service) Delete(id int) error { return s.Jobs.Delete(id) }

// CreateUser and UpdateUser delegate to the user registry, additionally
// enrolling new users into contest 0 (§4.7).
func (s *Service) CreateUser(name string) (User, error) {
	u, err := s.Users.Create(name)
	if err != nil {
		return User{}, err
	}
	s.Contests.AddUser(u.ID)
	return u, nil
}

func (s *Service) UpdateUser(id int, name string) (User, error) {
	return s.Users.Update(id, name)
}

func (s *Service) ListUsers() []User { return s.Users.List() }

func (s *Service) CreateContest(c Contest) (Contest, error) {
	return s.Contests.Create(c, s.Users.Exists, s.Set.KnownProblem)
}

func (s *Service) UpdateContest(c Contest) (Contest, error) {
	return s.Contests.Update(c, s.Users.Exists, s.Set.KnownProblem)
}

func (s *Service) GetContest(id int) (Contest, error) { return s.Contests.Get(id) }

func (s *Service) ListContests() []Contest { return s.Contests.List() }

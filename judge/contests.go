package judge

import (
	"sort"
	"sync"
	"time"
)

// ContestRegistry catalogs contests. Contest 0 is the implicit "everything"
// contest: every known user and configured problem, no enforceable window,
// a very large submission limit (§3).
type ContestRegistry struct {
	mu       sync.Mutex
	contests []Contest
}

// NewContestRegistry seeds contest 0 with every user id and problem id known
// at startup.
func NewContestRegistry(userIDs, problemIDs []int) *ContestRegistry {
	zero := Contest{
		ID:              0,
		Name:            "",
		From:            mustParse("0001-01-01T02:00:00.001Z"),
		To:              SentinelFuture,
		ProblemIDs:      append([]int(nil), problemIDs...),
		UserIDs:         append([]int(nil), userIDs...),
		SubmissionLimit: 1 << 30,
	}
	return &ContestRegistry{contests: []Contest{zero}}
}

// AddUser appends a newly created user id to contest 0's membership.
func (r *ContestRegistry) AddUser(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests[0].UserIDs = append(r.contests[0].UserIDs, userID)
}

// Restore inserts a contest loaded from the persistence mirror at startup,
// bypassing validation and id allocation. A restore of id 0 is a no-op
// since contest 0 is always synthesized fresh from the live user/problem
// sets at construction.
func (r *ContestRegistry) Restore(c Contest) {
	if c.ID == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests = append(r.contests, c)
}

// Create validates and inserts a new contest with the next id.
func (r *ContestRegistry) Create(c Contest, knownUser func(int) bool, knownProblem func(int) bool) (Contest, error) {
	if err := validateMembership(c, knownUser, knownProblem); err != nil {
		return Contest{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	maxID := 0
	for _, e := range r.contests {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	c.ID = maxID + 1
	r.contests = append(r.contests, c)
	return c, nil
}

// Update validates and replaces an existing non-zero contest.
func (r *ContestRegistry) Update(c Contest, knownUser func(int) bool, knownProblem func(int) bool) (Contest, error) {
	if c.ID == 0 {
		return Contest{}, ErrInvalidArgument("contest 0 cannot be updated")
	}
	if err := validateMembership(c, knownUser, knownProblem); err != nil {
		return Contest{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.contests {
		if e.ID == c.ID {
			r.contests[i] = c
			return c, nil
		}
	}
	return Contest{}, ErrNotFound("contest not found")
}

func validateMembership(c Contest, knownUser func(int) bool, knownProblem func(int) bool) error {
	for _, id := range c.ProblemIDs {
		if !knownProblem(id) {
			return ErrInvalidArgument("unknown problem id in contest")
		}
	}
	for _, id := range c.UserIDs {
		if !knownUser(id) {
			return ErrInvalidArgument("unknown user id in contest")
		}
	}
	if c.To.Before(c.From) {
		return ErrInvalidArgument("contest 'to' must not precede 'from'")
	}
	return nil
}

func (r *ContestRegistry) Get(id int) (Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contests {
		if c.ID == id {
			return c, nil
		}
	}
	return Contest{}, ErrNotFound("contest not found")
}

func (r *ContestRegistry) Exists(id int) bool {
	_, err := r.Get(id)
	return err == nil
}

// List returns every contest except 0, sorted by id ascending.
func (r *ContestRegistry) List() []Contest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Contest, 0, len(r.contests))
	for _, c := range r.contests {
		if c.ID != 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WindowContains reports whether now falls within [from, to] inclusive.
func WindowContains(c Contest, now time.Time) bool {
	return !now.Before(c.From) && !now.After(c.To)
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

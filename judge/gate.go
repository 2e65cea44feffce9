package judge

import "time"

// Gate validates and admits a submission (§4.5). Handlers acquire registries
// in the fixed order Config -> Users -> Contests -> Jobs (§5); Admit itself
// only reads, so it takes registries by reference and lets the caller decide
// locking granularity around the subsequent job-registry append.
type Gate struct {
	Languages map[string]Language
	Problems  map[int]Problem
	Users     *UserRegistry
	Contests  *ContestRegistry
	Jobs      *JobRegistry
}

// Admit checks all seven preconditions of §4.5 and returns nil if req may
// proceed to judging.
func (g *Gate) Admit(req JobRequest, now time.Time) error {
	if _, ok := g.Languages[req.Language]; !ok {
		return ErrNotFound("unknown language")
	}
	problem, ok := g.Problems[req.ProblemID]
	if !ok {
		return ErrNotFound("unknown problem")
	}
	if !g.Users.Exists(req.UserID) {
		return ErrNotFound("unknown user")
	}
	contest, err := g.Contests.Get(req.ContestID)
	if err != nil {
		return ErrNotFound("unknown contest")
	}

	if !WindowContains(contest, now) {
		return ErrInvalidArgument("outside contest time window")
	}
	if !containsInt(contest.UserIDs, req.UserID) || !containsInt(contest.ProblemIDs, problem.ID) {
		return ErrInvalidArgument("user or problem not part of contest")
	}

	if g.Jobs.CountSubmissions(req.UserID, req.ProblemID, req.ContestID) >= contest.SubmissionLimit {
		return ErrRateLimit("submission limit reached for this contest")
	}
	return nil
}

package judge

import (
	"sort"
	"time"
)

// ScoringRule selects how a user's per-problem score is picked among their
// matching jobs when the problem is not DynamicRanking (or has no Accepted
// job yet).
type ScoringRule int

const (
	Latest ScoringRule = iota
	Highest
)

func ParseScoringRule(s string) (ScoringRule, bool) {
	switch s {
	case "", "latest":
		return Latest, true
	case "highest":
		return Highest, true
	default:
		return 0, false
	}
}

// TieBreaker selects the secondary ordering within a tied total-score group.
type TieBreaker int

const (
	NoTieBreaker TieBreaker = iota
	SubmissionTime
	SubmissionCount
	UserID
)

func ParseTieBreaker(s string) (TieBreaker, bool) {
	switch s {
	case "":
		return NoTieBreaker, true
	case "submission_time":
		return SubmissionTime, true
	case "submission_count":
		return SubmissionCount, true
	case "user_id":
		return UserID, true
	default:
		return 0, false
	}
}

// UserRank is one row of a contest ranklist.
type UserRank struct {
	User       User
	Rank       int
	Scores     []float64
	TotalScore float64
}

type userAgg struct {
	user            User
	scores          []float64
	totalScore      float64
	submissionCount int
	submissionTime  time.Time // SentinelFuture when jobless; sentinel always sorts last (§4.8)
}

// Ranklist computes the ranklist for a contest per §4.8.
func (s *Service) Ranklist(contestID int, rule ScoringRule, tie TieBreaker) ([]UserRank, error) {
	contest, err := s.Contests.Get(contestID)
	if err != nil {
		return nil, err
	}
	allJobs := s.Jobs.Snapshot()

	aggs := make([]userAgg, 0, len(contest.UserIDs))
	for _, uid := range contest.UserIDs {
		user, err := s.Users.Get(uid)
		if err != nil {
			continue
		}
		agg := userAgg{user: user, scores: make([]float64, len(contest.ProblemIDs)), submissionTime: SentinelFuture}
		sawRealTime := false

		for pi, pid := range contest.ProblemIDs {
			problem, ok := s.Set.Problems[pid]
			if !ok {
				continue
			}
			matches := matchingJobs(allJobs, uid, pid)
			agg.submissionCount += len(matches)

			score, ts := perProblemScore(problem, matches, allJobs, contestID, rule)
			agg.scores[pi] = score
			agg.totalScore += score
			if !ts.Equal(SentinelFuture) {
				if !sawRealTime || ts.After(agg.submissionTime) {
					agg.submissionTime = ts
					sawRealTime = true
				}
			}
		}
		aggs = append(aggs, agg)
	}

	sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].totalScore > aggs[j].totalScore })

	return assignRanks(aggs, tie), nil
}

// matchingJobs returns all Finished jobs for (userID, problemID) across every
// contest, in creation (ascending id) order.
func matchingJobs(all []Job, userID, problemID int) []Job {
	out := make([]Job, 0)
	for _, j := range all {
		if j.State == Finished && j.Submission.UserID == userID && j.Submission.ProblemID == problemID {
			out = append(out, j)
		}
	}
	return out
}

func perProblemScore(problem Problem, matches []Job, all []Job, contestID int, rule ScoringRule) (float64, judgeTime) {
	if problem.Type == DynamicRanking {
		var accepted []Job
		for _, j := range matches {
			if j.Result == Accepted {
				accepted = append(accepted, j)
			}
		}
		if len(accepted) > 0 {
			latest := accepted[0]
			for _, j := range accepted[1:] {
				if j.CreatedTime.After(latest.CreatedTime) {
					latest = j
				}
			}
			r := problem.Ratio()
			var score float64
			for k := 1; k < len(latest.Cases); k++ {
				minT := latest.Cases[k].TimeMicros
				for _, j := range all {
					if j.State != Finished || j.Result != Accepted {
						continue
					}
					if j.Submission.ProblemID != problem.ID || j.Submission.ContestID != contestID {
						continue
					}
					if k < len(j.Cases) && j.Cases[k].TimeMicros < minT {
						minT = j.Cases[k].TimeMicros
					}
				}
				caseScore := problem.Cases[k-1].Score
				denom := latest.Cases[k].TimeMicros
				if denom <= 0 {
					score += caseScore
					continue
				}
				score += caseScore * (1 - r + r*float64(minT)/float64(denom))
			}
			return score, latest.CreatedTime
		}
		// No Accepted job: fall back to the selected scoring rule, same as a
		// non-DynamicRanking problem (§9 open-question resolution).
	}
	return applyScoringRule(matches, rule)
}

// judgeTime is an alias kept local to this file for readability.
type judgeTime = time.Time

func applyScoringRule(matches []Job, rule ScoringRule) (float64, judgeTime) {
	if len(matches) == 0 {
		return 0, SentinelFuture
	}
	if rule == Highest {
		best := matches[0]
		for _, j := range matches[1:] {
			if j.Score > best.Score || (j.Score == best.Score && j.CreatedTime.Before(best.CreatedTime)) {
				best = j
			}
		}
		return best.Score, best.CreatedTime
	}
	// Latest (default): maximum created_time, first occurrence on ties.
	latest := matches[0]
	for _, j := range matches[1:] {
		if j.CreatedTime.After(latest.CreatedTime) {
			latest = j
		}
	}
	return latest.Score, latest.CreatedTime
}

// assignRanks groups aggs (already sorted descending by totalScore) into
// tie groups and applies the requested tie-breaker, with dense rank
// numbering by position across groups (§4.8).
func assignRanks(aggs []userAgg, tie TieBreaker) []UserRank {
	out := make([]UserRank, 0, len(aggs))
	i := 0
	base := 0
	for i < len(aggs) {
		j := i + 1
		for j < len(aggs) && aggs[j].totalScore == aggs[i].totalScore {
			j++
		}
		group := aggs[i:j]
		out = append(out, rankGroup(group, tie, base)...)
		base += len(group)
		i = j
	}
	return out
}

func rankGroup(group []userAgg, tie TieBreaker, base int) []UserRank {
	ordered := make([]userAgg, len(group))
	copy(ordered, group)

	switch tie {
	case SubmissionTime:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].submissionTime.Before(ordered[j].submissionTime) })
		out := make([]UserRank, len(ordered))
		for k, a := range ordered {
			out[k] = UserRank{User: a.user, Rank: base + k + 1, Scores: a.scores, TotalScore: a.totalScore}
		}
		return out

	case SubmissionCount:
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].submissionCount != ordered[j].submissionCount {
				return ordered[i].submissionCount < ordered[j].submissionCount
			}
			return ordered[i].user.ID < ordered[j].user.ID
		})
		out := make([]UserRank, 0, len(ordered))
		k := 0
		for k < len(ordered) {
			l := k + 1
			for l < len(ordered) && ordered[l].submissionCount == ordered[k].submissionCount {
				l++
			}
			for _, a := range ordered[k:l] {
				out = append(out, UserRank{User: a.user, Rank: base + k + 1, Scores: a.scores, TotalScore: a.totalScore})
			}
			k = l
		}
		return out

	case UserID:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].user.ID < ordered[j].user.ID })
		out := make([]UserRank, len(ordered))
		for k, a := range ordered {
			out[k] = UserRank{User: a.user, Rank: base + k + 1, Scores: a.scores, TotalScore: a.totalScore}
		}
		return out

	default: // NoTieBreaker: every member shares the group's first rank.
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].user.ID < ordered[j].user.ID })
		out := make([]UserRank, len(ordered))
		for k, a := range ordered {
			out[k] = UserRank{User: a.user, Rank: base + 1, Scores: a.scores, TotalScore: a.totalScore}
		}
		return out
	}
}

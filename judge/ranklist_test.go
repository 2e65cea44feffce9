package judge

import (
	"testing"
	"time"
)

func newRanklistService(t *testing.T, problem Problem, userNames []string) (*Service, []User, Contest) {
	t.Helper()
	users := NewUserRegistry()
	var created []User
	for _, name := range userNames {
		u, err := users.Create(name)
		if err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
		created = append(created, u)
	}

	problems := map[int]Problem{problem.ID: problem}
	contests := NewContestRegistry(users.AllIDs(), []int{problem.ID})
	userIDs := make([]int, len(created))
	for i, u := range created {
		userIDs[i] = u.ID
	}
	contest, err := contests.Create(Contest{
		Name:            "round1",
		From:            time.Now().Add(-time.Hour),
		To:              time.Now().Add(time.Hour),
		ProblemIDs:      []int{problem.ID},
		UserIDs:         userIDs,
		SubmissionLimit: 1000,
	}, users.Exists, func(int) bool { return true })
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}

	jobs := NewJobRegistry()
	svc := NewService(ProblemSet{Problems: problems}, users, contests, jobs, nil)
	return svc, created, contest
}

func TestRanklistTieBreakByUserID(t *testing.T) {
	problem := Problem{ID: 1, Type: Standard, Cases: []ProblemCase{{Score: 100}}}
	svc, _, contest := newRanklistService(t, problem, []string{"carol", "alice", "bob"})

	ranks, err := svc.Ranklist(contest.ID, Latest, UserID)
	if err != nil {
		t.Fatalf("Ranklist: %v", err)
	}
	if len(ranks) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(ranks))
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i].User.ID < ranks[i-1].User.ID {
			t.Fatalf("rows not ascending by user id: %+v", ranks)
		}
		if ranks[i].Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, ranks[i].Rank)
		}
	}
}

func TestRanklistNoTieBreakerSharesFirstRank(t *testing.T) {
	problem := Problem{ID: 1, Type: Standard, Cases: []ProblemCase{{Score: 100}}}
	svc, _, contest := newRanklistService(t, problem, []string{"carol", "alice"})

	ranks, err := svc.Ranklist(contest.ID, Latest, NoTieBreaker)
	if err != nil {
		t.Fatalf("Ranklist: %v", err)
	}
	for _, r := range ranks {
		if r.Rank != 1 {
			t.Fatalf("expected every tied row to share rank 1, got %d", r.Rank)
		}
	}
}

func TestRanklistSubmissionTieBreakJoblessUserSortsLast(t *testing.T) {
	problem := Problem{ID: 1, Type: Standard, Cases: []ProblemCase{{Score: 100}}}
	svc, users, contest := newRanklistService(t, problem, []string{"noshow", "submitter"})
	noshow, submitter := users[0], users[1]

	svc.Jobs.Create(Job{
		Submission:  JobRequest{UserID: submitter.ID, ProblemID: problem.ID, ContestID: contest.ID},
		State:       Finished,
		Result:      WrongAnswer,
		CreatedTime: time.Now().UTC(),
		Score:       0,
		Cases: []CaseRecord{
			{ID: 0, Result: CompilationSuccess},
			{ID: 1, Result: WrongAnswer},
		},
	})

	ranks, err := svc.Ranklist(contest.ID, Latest, SubmissionTime)
	if err != nil {
		t.Fatalf("Ranklist: %v", err)
	}
	if len(ranks) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ranks))
	}

	var submitterRank, noshowRank int
	for _, r := range ranks {
		switch r.User.ID {
		case submitter.ID:
			submitterRank = r.Rank
		case noshow.ID:
			noshowRank = r.Rank
		}
	}
	if submitterRank != 1 {
		t.Fatalf("expected the actual submitter to rank ahead of the no-show, got rank %d", submitterRank)
	}
	if noshowRank != 2 {
		t.Fatalf("expected the jobless user to sort last (sentinel time), got rank %d", noshowRank)
	}
}

func TestRanklistDynamicRankingScoring(t *testing.T) {
	ratio := 0.5
	problem := Problem{
		ID:    1,
		Type:  DynamicRanking,
		Misc:  &Misc{DynamicRankingRatio: &ratio},
		Cases: []ProblemCase{{Score: 100}},
	}
	svc, users, contest := newRanklistService(t, problem, []string{"slow", "fast"})
	slow, fast := users[0], users[1]

	now := time.Now().UTC()
	slowJob := Job{
		Submission:  JobRequest{UserID: slow.ID, ProblemID: problem.ID, ContestID: contest.ID},
		State:       Finished,
		Result:      Accepted,
		CreatedTime: now,
		Cases: []CaseRecord{
			{ID: 0, Result: CompilationSuccess},
			{ID: 1, Result: Accepted, TimeMicros: 200},
		},
	}
	fastJob := Job{
		Submission:  JobRequest{UserID: fast.ID, ProblemID: problem.ID, ContestID: contest.ID},
		State:       Finished,
		Result:      Accepted,
		CreatedTime: now.Add(-time.Minute),
		Cases: []CaseRecord{
			{ID: 0, Result: CompilationSuccess},
			{ID: 1, Result: Accepted, TimeMicros: 100},
		},
	}
	svc.Jobs.Create(slowJob)
	svc.Jobs.Create(fastJob)

	ranks, err := svc.Ranklist(contest.ID, Latest, UserID)
	if err != nil {
		t.Fatalf("Ranklist: %v", err)
	}

	var slowScore, fastScore float64
	for _, r := range ranks {
		switch r.User.ID {
		case slow.ID:
			slowScore = r.TotalScore
		case fast.ID:
			fastScore = r.TotalScore
		}
	}

	if slowScore != 75 {
		t.Fatalf("expected slow submitter to score 75, got %v", slowScore)
	}
	if fastScore != 100 {
		t.Fatalf("expected fastest submitter to score 100, got %v", fastScore)
	}
}

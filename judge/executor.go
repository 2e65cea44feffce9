package judge

import (
	"context"
	"os"
	"time"
)

// Executor orchestrates compile + all cases for one admitted submission,
// applying packing rules and the DynamicRanking score discount (§4.4).
type Executor struct {
	Languages map[string]Language
	ScratchRoot string
	CompileTimeout time.Duration
}

func NewExecutor(languages map[string]Language, scratchRoot string, compileTimeout time.Duration) *Executor {
	if compileTimeout <= 0 {
		compileTimeout = 10 * time.Second
	}
	return &Executor{Languages: languages, ScratchRoot: scratchRoot, CompileTimeout: compileTimeout}
}

// Judge produces a fully formed job record for req under the given id and
// creation timestamp. The caller (Service) is responsible for admission and
// storage; Judge only runs the compile-and-run pipeline.
func (e *Executor) Judge(ctx context.Context, req JobRequest, problem Problem, id int, createdAt time.Time) Job {
	job := Job{
		ID:          id,
		CreatedTime: createdAt,
		Submission:  req,
		State:       Finished,
	}

	lang, ok := e.Languages[req.Language]
	if !ok {
		// The gate should have rejected this; treat as a programming error.
		job.Result = SystemError
		job.UpdatedTime = time.Now().UTC()
		return job
	}

	workDir, err := os.MkdirTemp(e.ScratchRoot, "judge-")
	if err != nil {
		job.Result = SystemError
		job.UpdatedTime = time.Now().UTC()
		return job
	}
	defer os.RemoveAll(workDir)

	compileCase, artifact, err := Compile(ctx, lang, req.SourceCode, workDir, e.CompileTimeout)
	if err != nil {
		job.Result = SystemError
		job.UpdatedTime = time.Now().UTC()
		return job
	}
	job.Cases = append(job.Cases, compileCase)

	if compileCase.Result == CompilationError {
		job.Result = CompilationError
		job.Score = 0
		for k := 1; k <= len(problem.Cases); k++ {
			job.Cases = append(job.Cases, CaseRecord{ID: k, Result: Waiting})
		}
		job.UpdatedTime = time.Now().UTC()
		return job
	}

	ratio := problem.Ratio()
	var spj []string
	if problem.Misc != nil {
		spj = problem.Misc.SpecialJudge
	}

	score, lastVerdict, caseRecords := runCases(ctx, problem, artifact, ratio, spj, workDir)
	job.Cases = append(job.Cases, caseRecords...)
	job.Score = score
	if lastVerdict == Waiting {
		// Waiting is the zero Result and is never assigned to a real case
		// verdict, so its absence here means every case that ran was Accepted.
		job.Result = Accepted
	} else {
		job.Result = lastVerdict
	}
	job.UpdatedTime = time.Now().UTC()
	return job
}

// runCases executes the problem's cases in packed or unpacked mode and
// returns the accumulated score, the last non-Accepted verdict observed (or
// the zero Result if everything passed), and the per-case records in id
// order.
func runCases(ctx context.Context, problem Problem, artifact string, ratio float64, spj []string, workDir string) (float64, Result, []CaseRecord) {
	if problem.Misc != nil && len(problem.Misc.Packing) > 0 {
		return runPacked(ctx, problem, artifact, ratio, spj, workDir)
	}
	return runUnpacked(ctx, problem, artifact, ratio, spj, workDir)
}

func runUnpacked(ctx context.Context, problem Problem, artifact string, ratio float64, spj []string, workDir string) (float64, Result, []CaseRecord) {
	var score float64
	var lastVerdict Result
	records := make([]CaseRecord, 0, len(problem.Cases))
	for i, pc := range problem.Cases {
		idx := i + 1
		rec := RunCase(ctx, artifact, pc, idx, problem.Type, spj, workDir)
		records = append(records, rec)
		if rec.Result == Accepted {
			score += pc.Score * (1 - ratio)
		} else {
			lastVerdict = rec.Result
		}
	}
	return score, lastVerdict, records
}

func runPacked(ctx context.Context, problem Problem, artifact string, ratio float64, spj []string, workDir string) (float64, Result, []CaseRecord) {
	var score float64
	var lastVerdict Result
	records := make([]CaseRecord, 0, len(problem.Cases))

	for _, group := range problem.Misc.Packing {
		groupFailed := false
		groupScore := 0.0
		for _, idx := range group {
			if idx < 1 || idx > len(problem.Cases) {
				continue
			}
			pc := problem.Cases[idx-1]
			if groupFailed {
				records = append(records, CaseRecord{ID: idx, Result: Skipped})
				continue
			}
			rec := RunCase(ctx, artifact, pc, idx, problem.Type, spj, workDir)
			records = append(records, rec)
			if rec.Result != Accepted {
				groupFailed = true
				lastVerdict = rec.Result
				continue
			}
			groupScore += pc.Score * (1 - ratio)
		}
		if !groupFailed {
			score += groupScore
		}
	}
	return score, lastVerdict, records
}

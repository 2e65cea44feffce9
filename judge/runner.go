package judge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// RunCase executes the compiled artifact against one problem case under a
// timeout of time_limit+500ms and determines its verdict per §4.3.
func RunCase(ctx context.Context, artifactPath string, pc ProblemCase, caseIdx int, problemType ProblemType, spj []string, workDir string) CaseRecord {
	outPath := filepath.Join(workDir, fmt.Sprintf("out.%d", caseIdx))
	errPath := filepath.Join(workDir, fmt.Sprintf("err.%d", caseIdx))

	in, err := os.Open(pc.InputFile)
	if err != nil {
		return CaseRecord{ID: caseIdx, Result: SystemError, Info: err.Error()}
	}
	defer in.Close()

	outFile, err := os.Create(outPath)
	if err != nil {
		return CaseRecord{ID: caseIdx, Result: SystemError, Info: err.Error()}
	}
	defer outFile.Close()

	errFile, err := os.Create(errPath)
	if err != nil {
		return CaseRecord{ID: caseIdx, Result: SystemError, Info: err.Error()}
	}
	defer errFile.Close()

	timeout := time.Duration(pc.TimeLimit)*time.Microsecond + 500*time.Millisecond
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, artifactPath)
	cmd.Stdin = in
	cmd.Stdout = outFile
	cmd.Stderr = errFile

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Microseconds()

	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return CaseRecord{ID: caseIdx, Result: TimeLimitExceeded}
	}
	_ = runErr // a non-zero exit is reflected via stderr/wrong-answer below, matching the reference runner's behavior

	if fi, statErr := os.Stat(errPath); statErr == nil && fi.Size() > 0 {
		return CaseRecord{ID: caseIdx, Result: RuntimeError, TimeMicros: elapsed}
	}

	verdict, info, cmpErr := Compare(cctx, problemType, pc.AnswerFile, outPath, spj)
	if cmpErr != nil {
		return CaseRecord{ID: caseIdx, Result: SystemError, Info: cmpErr.Error()}
	}
	if verdict == SpjError {
		return CaseRecord{ID: caseIdx, Result: SpjError, TimeMicros: elapsed, Info: info}
	}
	if verdict == Accepted {
		if elapsed > pc.TimeLimit {
			return CaseRecord{ID: caseIdx, Result: TimeLimitExceeded, TimeMicros: elapsed, Info: info}
		}
		return CaseRecord{ID: caseIdx, Result: Accepted, TimeMicros: elapsed, Info: info}
	}
	return CaseRecord{ID: caseIdx, Result: WrongAnswer, TimeMicros: elapsed, Info: info}
}

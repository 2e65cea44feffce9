// Package judge implements the judging pipeline and contest-ranking engine:
// comparator, compiler, case runner, judge executor, submission gate, job
// registry, user/contest registry and ranklist computer.
package judge

import "time"

// ProblemType selects the answer-comparison mode for a problem.
type ProblemType int

const (
	Standard ProblemType = iota
	Strict
	Spj
	DynamicRanking
)

func (t ProblemType) String() string {
	switch t {
	case Standard:
		return "standard"
	case Strict:
		return "strict"
	case Spj:
		return "spj"
	case DynamicRanking:
		return "dynamic_ranking"
	default:
		return "unknown"
	}
}

func ParseProblemType(s string) (ProblemType, bool) {
	switch s {
	case "standard":
		return Standard, true
	case "strict":
		return Strict, true
	case "spj":
		return Spj, true
	case "dynamic_ranking":
		return DynamicRanking, true
	default:
		return 0, false
	}
}

func (t ProblemType) MarshalJSON() ([]byte, error) { return quoteJSON(t.String()) }

func (t *ProblemType) UnmarshalJSON(b []byte) error {
	s, err := unquoteJSON(b)
	if err != nil {
		return err
	}
	v, ok := ParseProblemType(s)
	if !ok {
		return &unmarshalError{field: "type", value: s}
	}
	*t = v
	return nil
}

// State is a job's lifecycle state.
type State int

const (
	Queueing State = iota
	RunningState
	Finished
	Canceled
)

func (s State) String() string {
	switch s {
	case Queueing:
		return "Queueing"
	case RunningState:
		return "Running"
	case Finished:
		return "Finished"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

func ParseState(s string) (State, bool) {
	switch s {
	case "Queueing":
		return Queueing, true
	case "Running":
		return RunningState, true
	case "Finished":
		return Finished, true
	case "Canceled":
		return Canceled, true
	default:
		return 0, false
	}
}

func (s State) MarshalJSON() ([]byte, error) { return quoteJSON(s.String()) }

func (s *State) UnmarshalJSON(b []byte) error {
	str, err := unquoteJSON(b)
	if err != nil {
		return err
	}
	v, ok := ParseState(str)
	if !ok {
		return &unmarshalError{field: "state", value: str}
	}
	*s = v
	return nil
}

// Result is a job or case verdict.
type Result int

const (
	Waiting Result = iota
	RunningResult
	Accepted
	CompilationError
	CompilationSuccess
	WrongAnswer
	RuntimeError
	TimeLimitExceeded
	MemoryLimitExceeded
	SystemError
	SpjError
	Skipped
)

func (r Result) String() string {
	switch r {
	case Waiting:
		return "Waiting"
	case RunningResult:
		return "Running"
	case Accepted:
		return "Accepted"
	case CompilationError:
		return "Compilation Error"
	case CompilationSuccess:
		return "Compilation Success"
	case WrongAnswer:
		return "Wrong Answer"
	case RuntimeError:
		return "Runtime Error"
	case TimeLimitExceeded:
		return "Time Limit Exceeded"
	case MemoryLimitExceeded:
		return "Memory Limit Exceeded"
	case SystemError:
		return "System Error"
	case SpjError:
		return "SPJ Error"
	case Skipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

func ParseResult(s string) (Result, bool) {
	switch s {
	case "Waiting":
		return Waiting, true
	case "Running":
		return RunningResult, true
	case "Accepted":
		return Accepted, true
	case "Compilation Error":
		return CompilationError, true
	case "Compilation Success":
		return CompilationSuccess, true
	case "Wrong Answer":
		return WrongAnswer, true
	case "Runtime Error":
		return RuntimeError, true
	case "Time Limit Exceeded":
		return TimeLimitExceeded, true
	case "Memory Limit Exceeded":
		return MemoryLimitExceeded, true
	case "System Error":
		return SystemError, true
	case "SPJ Error":
		return SpjError, true
	case "Skipped":
		return Skipped, true
	default:
		return 0, false
	}
}

func (r Result) MarshalJSON() ([]byte, error) { return quoteJSON(r.String()) }

func (r *Result) UnmarshalJSON(b []byte) error {
	s, err := unquoteJSON(b)
	if err != nil {
		return err
	}
	v, ok := ParseResult(s)
	if !ok {
		return &unmarshalError{field: "result", value: s}
	}
	*r = v
	return nil
}

// ProblemCase is one (input, expected-answer, score, time-limit) tuple.
type ProblemCase struct {
	Score       float64
	InputFile   string
	AnswerFile  string
	TimeLimit   int64 // microseconds
	MemoryLimit int
}

// Misc carries the optional per-problem packing, spj and dynamic-ranking knobs.
type Misc struct {
	// Packing is an ordered partition of 1-based case indices into subtasks.
	// Every index 1..len(Cases) must appear in exactly one group, in order.
	Packing [][]int
	// SpecialJudge is [program, fixedArg] for Spj problems.
	SpecialJudge []string
	// DynamicRankingRatio is r in [0,1] for DynamicRanking problems.
	DynamicRankingRatio *float64
}

// Problem is immutable for the lifetime of the process.
type Problem struct {
	ID    int
	Name  string
	Type  ProblemType
	Misc  *Misc
	Cases []ProblemCase
}

// Ratio returns the dynamic-ranking ratio, or 0 for non-DynamicRanking problems.
func (p Problem) Ratio() float64 {
	if p.Type != DynamicRanking || p.Misc == nil || p.Misc.DynamicRankingRatio == nil {
		return 0
	}
	return *p.Misc.DynamicRankingRatio
}

// Language is a closed-at-load-time compiler/runtime definition. Command is a
// command vector where the tokens "{src}" and "{out}" are replaced with the
// scratch-relative source and artifact paths at compile time.
type Language struct {
	Name     string
	FileName string
	Command  []string
}

// User is a registered account.
type User struct {
	ID   int
	Name string
}

// Contest scopes a set of users and problems to a submission window.
type Contest struct {
	ID              int
	Name            string
	From            time.Time
	To              time.Time
	ProblemIDs      []int
	UserIDs         []int
	SubmissionLimit int
}

// JobRequest is what a caller submits for judging.
type JobRequest struct {
	SourceCode string
	Language   string
	UserID     int
	ContestID  int
	ProblemID  int
}

// CaseRecord is the per-case outcome stored on a Job. Index 0 is the compile
// pseudo-case; index k>=1 corresponds to the k-th declared problem case.
type CaseRecord struct {
	ID         int
	Result     Result
	TimeMicros int64
	Memory     float64
	Info       string
}

// Job is a fully formed judging record.
type Job struct {
	ID          int
	CreatedTime time.Time
	UpdatedTime time.Time
	Submission  JobRequest
	State       State
	Result      Result
	Score       float64
	Cases       []CaseRecord
	Warning     *string
}

func quoteJSON(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out, nil
}

func unquoteJSON(b []byte) (string, error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return "", &unmarshalError{field: "value", value: string(b)}
	}
	return string(b[1 : len(b)-1]), nil
}

type unmarshalError struct {
	field string
	value string
}

func (e *unmarshalError) Error() string {
	return "judge: invalid " + e.field + " value: " + e.value
}

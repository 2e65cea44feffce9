package core

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tuis-oj-prototype/judge"
)

const mysqlWarning = "fail to connect to mysql"

// NewRouter builds the *gin.Engine exposing the endpoint table of §6 plus a
// GET /healthz liveness probe, translating gin's JSON binding onto the
// judge.Service operations and the typed errors of §7 onto the wire error
// envelope (§4.9). mirror may be nil when the process is running without a
// persistence backend, including when connecting to it or setting up its
// schema failed at startup; mutating handlers then persist nothing and
// attach no warning (see persist). A warning is attached only when a
// configured mirror's write fails.
func NewRouter(svc *judge.Service, mirror *Mirror, hb *Heartbeat) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/jobs", func(c *gin.Context) { handleSubmitJob(c, svc, mirror, hb) })
	r.GET("/jobs", func(c *gin.Context) { handleQueryJobs(c, svc) })
	r.GET("/jobs/:id", func(c *gin.Context) { handleGetJob(c, svc) })
	r.PUT("/jobs/:id", func(c *gin.Context) { handleRejudge(c, svc, mirror, hb) })
	r.DELETE("/jobs/:id", func(c *gin.Context) { handleDeleteJob(c, svc) })

	r.POST("/users", func(c *gin.Context) { handlePostUser(c, svc, mirror) })
	r.GET("/users", func(c *gin.Context) { handleListUsers(c, svc) })

	r.POST("/contests", func(c *gin.Context) { handlePostContest(c, svc, mirror) })
	r.GET("/contests", func(c *gin.Context) { handleListContests(c, svc) })
	r.GET("/contests/:id", func(c *gin.Context) { handleGetContest(c, svc) })
	r.GET("/contests/:id/ranklist", func(c *gin.Context) { handleRanklist(c, svc) })

	r.GET("/internal/status", func(c *gin.Context) { c.JSON(http.StatusOK, hb.Snapshot()) })
	r.POST("/internal/exit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "exiting"})
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Exit(0)
		}()
	})

	return r
}

// --- wire DTOs (§3 Job record / User / Contest, §6) ---

type jobRequestDTO struct {
	SourceCode string `json:"source_code" binding:"required"`
	Language   string `json:"language" binding:"required"`
	UserID     int    `json:"user_id"`
	ContestID  int    `json:"contest_id"`
	ProblemID  int    `json:"problem_id"`
}

type caseRecordDTO struct {
	ID     int     `json:"id"`
	Result string  `json:"result"`
	Time   int64   `json:"time"`
	Memory float64 `json:"memory"`
	Info   string  `json:"info"`
}

type jobResponseDTO struct {
	ID          int             `json:"id"`
	CreatedTime string          `json:"created_time"`
	UpdatedTime string          `json:"updated_time"`
	Submission  jobRequestDTO   `json:"submission"`
	State       string          `json:"state"`
	Result      string          `json:"result"`
	Score       float64         `json:"score"`
	Cases       []caseRecordDTO `json:"cases"`
	Warning     *string         `json:"warning,omitempty"`
}

func toJobResponse(j judge.Job) jobResponseDTO {
	cases := make([]caseRecordDTO, len(j.Cases))
	for i, c := range j.Cases {
		cases[i] = caseRecordDTO{ID: c.ID, Result: c.Result.String(), Time: c.TimeMicros, Memory: c.Memory, Info: c.Info}
	}
	return jobResponseDTO{
		ID:          j.ID,
		CreatedTime: judge.FormatTime(j.CreatedTime),
		UpdatedTime: judge.FormatTime(j.UpdatedTime),
		Submission: jobRequestDTO{
			SourceCode: j.Submission.SourceCode,
			Language:   j.Submission.Language,
			UserID:     j.Submission.UserID,
			ContestID:  j.Submission.ContestID,
			ProblemID:  j.Submission.ProblemID,
		},
		State:   j.State.String(),
		Result:  j.Result.String(),
		Score:   j.Score,
		Cases:   cases,
		Warning: j.Warning,
	}
}

type userDTO struct {
	ID   *int   `json:"id,omitempty"`
	Name string `json:"name" binding:"required"`
}

type userResponseDTO struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Warning *string `json:"warning,omitempty"`
}

type contestDTO struct {
	ID              *int   `json:"id,omitempty"`
	Name            string `json:"name"`
	From            string `json:"from" binding:"required"`
	To              string `json:"to" binding:"required"`
	ProblemIDs      []int  `json:"problem_ids"`
	UserIDs         []int  `json:"user_ids"`
	SubmissionLimit int    `json:"submission_limit"`
}

type contestResponseDTO struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	ProblemIDs      []int   `json:"problem_ids"`
	UserIDs         []int   `json:"user_ids"`
	SubmissionLimit int     `json:"submission_limit"`
	Warning         *string `json:"warning,omitempty"`
}

func toContestResponse(c judge.Contest) contestResponseDTO {
	return contestResponseDTO{
		ID: c.ID, Name: c.Name, From: judge.FormatTime(c.From), To: judge.FormatTime(c.To),
		ProblemIDs: c.ProblemIDs, UserIDs: c.UserIDs, SubmissionLimit: c.SubmissionLimit,
	}
}

type rankUserDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type rankRowDTO struct {
	User       rankUserDTO `json:"user"`
	Rank       int         `json:"rank"`
	Scores     []float64   `json:"scores"`
	TotalScore float64     `json:"total_score"`
}

// --- job handlers ---

func handleSubmitJob(c *gin.Context, svc *judge.Service, mirror *Mirror, hb *Heartbeat) {
	var req jobRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, judge.ErrInvalidArgument(err.Error()))
		return
	}
	jr := judge.JobRequest{
		SourceCode: req.SourceCode, Language: req.Language,
		UserID: req.UserID, ContestID: req.ContestID, ProblemID: req.ProblemID,
	}

	start := time.Now()
	previewID := svc.Jobs.NextID()
	hb.JobStarted(previewID)
	job, err := svc.Submit(c.Request.Context(), jr)
	hb.JobFinished(previewID, time.Since(start))
	if err != nil {
		respondError(c, err)
		return
	}

	job.Warning = persist(c.Request.Context(), mirror, func(ctx context.Context) error { return mirror.SaveJob(ctx, job) })
	c.JSON(http.StatusOK, toJobResponse(job))
}

func handleQueryJobs(c *gin.Context, svc *judge.Service) {
	filter, err := parseJobFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	jobs := svc.Query(filter)
	out := make([]jobResponseDTO, len(jobs))
	for i, j := range jobs {
		out[i] = toJobResponse(j)
	}
	c.JSON(http.StatusOK, out)
}

func parseJobFilter(c *gin.Context) (judge.JobFilter, error) {
	var f judge.JobFilter
	q := c.Request.URL.Query()

	if v := q.Get("user_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return f, judge.ErrInvalidArgument("invalid user_id")
		}
		f.UserID = &id
	}
	if v := q.Get("user_name"); v != "" {
		f.UserName = &v
	}
	if v := q.Get("contest_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return f, judge.ErrInvalidArgument("invalid contest_id")
		}
		f.ContestID = &id
	}
	if v := q.Get("problem_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return f, judge.ErrInvalidArgument("invalid problem_id")
		}
		f.ProblemID = &id
	}
	if v := q.Get("language"); v != "" {
		f.Language = &v
	}
	if v := q.Get("from"); v != "" {
		t, err := judge.ParseTime(v)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := judge.ParseTime(v)
		if err != nil {
			return f, err
		}
		f.To = &t
	}
	if v := q.Get("state"); v != "" {
		st, ok := judge.ParseState(v)
		if !ok {
			return f, judge.ErrInvalidArgument("invalid state")
		}
		f.State = &st
	}
	if v := q.Get("result"); v != "" {
		rs, ok := judge.ParseResult(v)
		if !ok {
			return f, judge.ErrInvalidArgument("invalid result")
		}
		f.Result = &rs
	}
	return f, nil
}

func handleGetJob(c *gin.Context, svc *judge.Service) {
	id, err := parseIDParam(c)
	if err != nil {
		respondGetError(c, err)
		return
	}
	job, err := svc.Get(id)
	if err != nil {
		respondGetError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJobResponse(job))
}

func handleRejudge(c *gin.Context, svc *judge.Service, mirror *Mirror, hb *Heartbeat) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	start := time.Now()
	hb.JobStarted(id)
	job, err := svc.Rejudge(c.Request.Context(), id)
	hb.JobFinished(id, time.Since(start))
	if err != nil {
		respondError(c, err)
		return
	}
	job.Warning = persist(c.Request.Context(), mirror, func(ctx context.Context) error { return mirror.SaveJob(ctx, job) })
	c.JSON(http.StatusOK, toJobResponse(job))
}

func handleDeleteJob(c *gin.Context, svc *judge.Service) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := svc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func parseIDParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, judge.ErrNotFound("invalid id")
	}
	return id, nil
}

// --- user handlers ---

func handlePostUser(c *gin.Context, svc *judge.Service, mirror *Mirror) {
	var req userDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, judge.ErrInvalidArgument(err.Error()))
		return
	}
	var u judge.User
	var err error
	if req.ID == nil {
		u, err = svc.CreateUser(req.Name)
	} else {
		u, err = svc.UpdateUser(*req.ID, req.Name)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	warning := persist(c.Request.Context(), mirror, func(ctx context.Context) error { return mirror.SaveUser(ctx, u) })
	c.JSON(http.StatusOK, userResponseDTO{ID: u.ID, Name: u.Name, Warning: warning})
}

func handleListUsers(c *gin.Context, svc *judge.Service) {
	users := svc.ListUsers()
	out := make([]userResponseDTO, len(users))
	for i, u := range users {
		out[i] = userResponseDTO{ID: u.ID, Name: u.Name}
	}
	c.JSON(http.StatusOK, out)
}

// --- contest handlers ---

func handlePostContest(c *gin.Context, svc *judge.Service, mirror *Mirror) {
	var req contestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, judge.ErrInvalidArgument(err.Error()))
		return
	}
	from, err := judge.ParseTime(req.From)
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := judge.ParseTime(req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	contest := judge.Contest{
		Name: req.Name, From: from, To: to,
		ProblemIDs: req.ProblemIDs, UserIDs: req.UserIDs, SubmissionLimit: req.SubmissionLimit,
	}
	var out judge.Contest
	if req.ID == nil {
		out, err = svc.CreateContest(contest)
	} else {
		contest.ID = *req.ID
		out, err = svc.UpdateContest(contest)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	resp := toContestResponse(out)
	resp.Warning = persist(c.Request.Context(), mirror, func(ctx context.Context) error { return mirror.SaveContest(ctx, out) })
	c.JSON(http.StatusOK, resp)
}

func handleListContests(c *gin.Context, svc *judge.Service) {
	contests := svc.ListContests()
	out := make([]contestResponseDTO, len(contests))
	for i, ct := range contests {
		out[i] = toContestResponse(ct)
	}
	c.JSON(http.StatusOK, out)
}

func handleGetContest(c *gin.Context, svc *judge.Service) {
	id, err := parseIDParam(c)
	if err != nil {
		respondGetError(c, err)
		return
	}
	contest, err := svc.GetContest(id)
	if err != nil {
		respondGetError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContestResponse(contest))
}

func handleRanklist(c *gin.Context, svc *judge.Service) {
	id, err := parseIDParam(c)
	if err != nil {
		respondGetError(c, err)
		return
	}
	rule, ok := judge.ParseScoringRule(c.Query("scoring_rule"))
	if !ok {
		respondError(c, judge.ErrInvalidArgument("invalid scoring_rule"))
		return
	}
	tie, ok := judge.ParseTieBreaker(c.Query("tie_breaker"))
	if !ok {
		respondError(c, judge.ErrInvalidArgument("invalid tie_breaker"))
		return
	}
	ranks, err := svc.Ranklist(id, rule, tie)
	if err != nil {
		respondGetError(c, err)
		return
	}
	out := make([]rankRowDTO, len(ranks))
	for i, r := range ranks {
		out[i] = rankRowDTO{
			User:       rankUserDTO{ID: r.User.ID, Name: r.User.Name},
			Rank:       r.Rank,
			Scores:     r.Scores,
			TotalScore: r.TotalScore,
		}
	}
	c.JSON(http.StatusOK, out)
}

// persist runs a best-effort mirror write. A nil mirror means no
// persistence backend was configured for this process and is treated as
// the normal in-memory-only mode (no warning); a configured mirror whose
// write fails produces the degraded-mode warning of §6/§7 instead of
// failing the request.
func persist(ctx context.Context, mirror *Mirror, write func(context.Context) error) *string {
	if mirror == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := write(ctx); err != nil {
		warning := mysqlWarning
		return &warning
	}
	return nil
}

package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tuis-oj-prototype/judge"
)

// Mirror is the best-effort write-behind persistence layer of §4.10: one
// repository-style type fronting the seven tables of §6
// (userlist, joblist, job_submit, job_cases, contest_list, contest_problems,
// contest_users), modeled on the reference codebase's Pg*Repository shape —
// a *pgxpool.Pool plus narrow Save/Load methods. Every mutating core
// operation calls its Save method after committing the in-memory mutation;
// a failed call never fails the request, it only produces a warning for the
// caller to attach to the response (§6, §7).
type Mirror struct {
	pool *pgxpool.Pool
}

func NewMirror(pool *pgxpool.Pool) *Mirror {
	return &Mirror{pool: pool}
}

const mirrorSchema = `
CREATE TABLE IF NOT EXISTS userlist (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS joblist (
	id           BIGINT PRIMARY KEY,
	created_time TIMESTAMPTZ NOT NULL,
	updated_time TIMESTAMPTZ NOT NULL,
	state        TEXT NOT NULL,
	result       TEXT NOT NULL,
	score        DOUBLE PRECISION NOT NULL,
	warning      TEXT
);
CREATE TABLE IF NOT EXISTS job_submit (
	job_id      BIGINT PRIMARY KEY REFERENCES joblist(id),
	source_code TEXT NOT NULL,
	language    TEXT NOT NULL,
	user_id     BIGINT NOT NULL,
	contest_id  BIGINT NOT NULL,
	problem_id  BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS job_cases (
	job_id      BIGINT NOT NULL REFERENCES joblist(id),
	case_id     INT NOT NULL,
	result      TEXT NOT NULL,
	time_micros BIGINT NOT NULL,
	memory      DOUBLE PRECISION NOT NULL,
	info        TEXT NOT NULL,
	PRIMARY KEY (job_id, case_id)
);
CREATE TABLE IF NOT EXISTS contest_list (
	id               BIGINT PRIMARY KEY,
	name             TEXT NOT NULL,
	from_time        TIMESTAMPTZ NOT NULL,
	to_time          TIMESTAMPTZ NOT NULL,
	submission_limit INT NOT NULL
);
CREATE TABLE IF NOT EXISTS contest_problems (
	contest_id BIGINT NOT NULL,
	problem_id BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS contest_users (
	contest_id BIGINT NOT NULL,
	user_id    BIGINT NOT NULL
);
`

// EnsureSchema creates the seven tables if they do not already exist.
func (m *Mirror) EnsureSchema(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, mirrorSchema)
	return err
}

// Flush truncates every mirrored table; called when --flush-data is given
// before the in-memory registries are seeded (§4.11).
func (m *Mirror) Flush(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `TRUNCATE job_cases, job_submit, joblist, contest_users, contest_problems, contest_list, userlist`)
	return err
}

// SaveUser upserts one user row, excluding the always-present root user
// (id 0), which is never mirrored since it is not created through the API.
func (m *Mirror) SaveUser(ctx context.Context, u judge.User) error {
	if u.ID == 0 {
		return nil
	}
	_, err := m.pool.Exec(ctx, `
		INSERT INTO userlist (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, u.ID, u.Name)
	return err
}

// SaveContest upserts a contest row and replaces its membership tables.
func (m *Mirror) SaveContest(ctx context.Context, c judge.Contest) error {
	if c.ID == 0 {
		return nil
	}
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO contest_list (id, name, from_time, to_time, submission_limit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, from_time=EXCLUDED.from_time,
			to_time=EXCLUDED.to_time, submission_limit=EXCLUDED.submission_limit`,
		c.ID, c.Name, c.From, c.To, c.SubmissionLimit); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM contest_problems WHERE contest_id=$1`, c.ID); err != nil {
		return err
	}
	for _, pid := range c.ProblemIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO contest_problems (contest_id, problem_id) VALUES ($1,$2)`, c.ID, pid); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM contest_users WHERE contest_id=$1`, c.ID); err != nil {
		return err
	}
	for _, uid := range c.UserIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO contest_users (contest_id, user_id) VALUES ($1,$2)`, c.ID, uid); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SaveJob upserts a job's header, submission and case rows. Re-judge calls
// this again for the same id, so job_cases rows are replaced wholesale.
func (m *Mirror) SaveJob(ctx context.Context, j judge.Job) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var warning *string
	if j.Warning != nil {
		warning = j.Warning
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO joblist (id, created_time, updated_time, state, result, score, warning)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET updated_time=EXCLUDED.updated_time, state=EXCLUDED.state,
			result=EXCLUDED.result, score=EXCLUDED.score, warning=EXCLUDED.warning`,
		j.ID, j.CreatedTime, j.UpdatedTime, j.State.String(), j.Result.String(), j.Score, warning); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO job_submit (job_id, source_code, language, user_id, contest_id, problem_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (job_id) DO UPDATE SET source_code=EXCLUDED.source_code`,
		j.ID, j.Submission.SourceCode, j.Submission.Language, j.Submission.UserID, j.Submission.ContestID, j.Submission.ProblemID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM job_cases WHERE job_id=$1`, j.ID); err != nil {
		return err
	}
	for _, c := range j.Cases {
		if _, err := tx.Exec(ctx, `
			INSERT INTO job_cases (job_id, case_id, result, time_micros, memory, info)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			j.ID, c.ID, c.Result.String(), c.TimeMicros, c.Memory, c.Info); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Rehydrate loads every mirrored user, contest and job back into memory, in
// ascending id order, for a restart that was not given --flush-data.
func (m *Mirror) Rehydrate(ctx context.Context) ([]judge.User, []judge.Contest, []judge.Job, error) {
	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rehydrate users: %w", err)
	}
	contests, err := m.loadContests(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rehydrate contests: %w", err)
	}
	jobs, err := m.loadJobs(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rehydrate jobs: %w", err)
	}
	return users, contests, jobs, nil
}

func (m *Mirror) loadUsers(ctx context.Context) ([]judge.User, error) {
	rows, err := m.pool.Query(ctx, `SELECT id, name FROM userlist ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []judge.User
	for rows.Next() {
		var u judge.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (m *Mirror) loadContests(ctx context.Context) ([]judge.Contest, error) {
	rows, err := m.pool.Query(ctx, `SELECT id, name, from_time, to_time, submission_limit FROM contest_list ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []judge.Contest
	for rows.Next() {
		var c judge.Contest
		if err := rows.Scan(&c.ID, &c.Name, &c.From, &c.To, &c.SubmissionLimit); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ProblemIDs, err = m.loadIntColumn(ctx, `SELECT problem_id FROM contest_problems WHERE contest_id=$1 ORDER BY problem_id`, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].UserIDs, err = m.loadIntColumn(ctx, `SELECT user_id FROM contest_users WHERE contest_id=$1 ORDER BY user_id`, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (m *Mirror) loadIntColumn(ctx context.Context, query string, arg int) ([]int, error) {
	rows, err := m.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (m *Mirror) loadJobs(ctx context.Context) ([]judge.Job, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT j.id, j.created_time, j.updated_time, j.state, j.result, j.score, j.warning,
		       s.source_code, s.language, s.user_id, s.contest_id, s.problem_id
		FROM joblist j JOIN job_submit s ON s.job_id = j.id
		ORDER BY j.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []judge.Job
	for rows.Next() {
		var j judge.Job
		var stateStr, resultStr string
		var warning *string
		if err := rows.Scan(&j.ID, &j.CreatedTime, &j.UpdatedTime, &stateStr, &resultStr, &j.Score, &warning,
			&j.Submission.SourceCode, &j.Submission.Language, &j.Submission.UserID, &j.Submission.ContestID, &j.Submission.ProblemID); err != nil {
			return nil, err
		}
		if st, ok := judge.ParseState(stateStr); ok {
			j.State = st
		}
		if rs, ok := judge.ParseResult(resultStr); ok {
			j.Result = rs
		}
		j.Warning = warning
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		cases, err := m.loadCases(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Cases = cases
	}
	return out, nil
}

func (m *Mirror) loadCases(ctx context.Context, jobID int) ([]judge.CaseRecord, error) {
	rows, err := m.pool.Query(ctx, `SELECT case_id, result, time_micros, memory, info FROM job_cases WHERE job_id=$1 ORDER BY case_id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []judge.CaseRecord
	for rows.Next() {
		var c judge.CaseRecord
		var resultStr string
		if err := rows.Scan(&c.ID, &resultStr, &c.TimeMicros, &c.Memory, &c.Info); err != nil {
			return nil, err
		}
		if rs, ok := judge.ParseResult(resultStr); ok {
			c.Result = rs
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

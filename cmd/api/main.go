// Command api is the judge core's sole process: it loads the judge domain
// config (§4.11), optionally rehydrates or flushes a Postgres persistence
// mirror (§4.10), and serves the HTTP surface of §4.9/§6. There is no
// separate worker process: judging is synchronous and there is no queue
// to consume (§5).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tuis-oj-prototype/core"
	"tuis-oj-prototype/judge"
)

func main() {
	cliArgs, err := core.ParseCLIArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("argument error: %v", err)
	}

	ambient := core.LoadAmbient()
	logCloser, err := core.SetupLogging(ambient, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	domain, err := core.LoadDomainConfig(cliArgs.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load domain config: %v", err)
	}

	ctx := context.Background()

	users := judge.NewUserRegistry()
	contests := judge.NewContestRegistry(users.AllIDs(), problemIDs(domain.Set.Problems))
	jobs := judge.NewJobRegistry()

	var mirror *core.Mirror
	if ambient.DatabaseURL != "" {
		pool, err := core.Connect(ctx, ambient.DatabaseURL)
		if err != nil {
			log.Printf("persistence mirror unavailable, running in-memory only: %v", err)
		} else {
			defer pool.Close()
			m := core.NewMirror(pool)
			if err := m.EnsureSchema(ctx); err != nil {
				log.Printf("persistence mirror schema setup failed, running in-memory only: %v", err)
			} else {
				mirror = m
				if cliArgs.FlushData {
					if err := mirror.Flush(ctx); err != nil {
						log.Printf("failed to flush persistence mirror: %v", err)
					}
				} else {
					rehydrated, err := rehydrate(ctx, mirror, users, contests, jobs)
					if err != nil {
						log.Printf("failed to rehydrate from persistence mirror: %v", err)
					} else if rehydrated {
						log.Printf("rehydrated registries from persistence mirror")
					}
				}
			}
		}
	}

	scratchRoot := ambient.ScratchRoot
	if scratchRoot == "" {
		scratchRoot = os.TempDir()
	}
	executor := judge.NewExecutor(domain.Set.Languages, scratchRoot, time.Duration(ambient.CompileTimeMs)*time.Millisecond)
	svc := judge.NewService(domain.Set, users, contests, jobs, executor)

	hb := core.NewHeartbeat(core.NewInstanceID())
	router := core.NewRouter(svc, mirror, hb)

	addr := fmt.Sprintf("%s:%d", domain.BindAddress, domain.BindPort)
	if domain.BindPort == 0 {
		addr = fmt.Sprintf("0.0.0.0:%s", ambient.Port)
	}
	log.Printf("starting judge api on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func problemIDs(problems map[int]judge.Problem) []int {
	ids := make([]int, 0, len(problems))
	for id := range problems {
		ids = append(ids, id)
	}
	return ids
}

// rehydrate loads users, contests and jobs from the mirror into the
// freshly constructed registries. It reports whether any user, contest or
// job row was found, since an empty mirror on first boot is not worth logging.
func rehydrate(ctx context.Context, mirror *core.Mirror, users *judge.UserRegistry, contests *judge.ContestRegistry, jobs *judge.JobRegistry) (bool, error) {
	loadedUsers, loadedContests, loadedJobs, err := mirror.Rehydrate(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range loadedUsers {
		users.Restore(u)
		contests.AddUser(u.ID)
	}
	for _, c := range loadedContests {
		contests.Restore(c)
	}
	for _, j := range loadedJobs {
		jobs.Restore(j)
	}
	return len(loadedUsers) > 0 || len(loadedContests) > 0 || len(loadedJobs) > 0, nil
}

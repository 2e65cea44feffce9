package core

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"tuis-oj-prototype/judge"
)

// AmbientConfig holds process-level settings that have nothing to do with the
// judging domain: where to listen, where to log, how to reach the optional
// persistence mirror. Loaded from the environment with sane defaults, the
// same way the reference codebase's Load() works.
type AmbientConfig struct {
	Port          string
	LogDir        string
	DatabaseURL   string
	ScratchRoot   string
	CompileTimeMs int
}

// LoadAmbient populates AmbientConfig from environment variables.
func LoadAmbient() AmbientConfig {
	return AmbientConfig{
		Port:          firstNonEmpty(os.Getenv("PORT"), "3000"),
		LogDir:        firstNonEmpty(os.Getenv("LOG_DIR"), "/var/log/oj"),
		DatabaseURL:   firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("POSTGRES_URL"), ""),
		ScratchRoot:   firstNonEmpty(os.Getenv("SCRATCH_ROOT"), os.TempDir()),
		CompileTimeMs: intFromEnv("COMPILE_TIME_LIMIT_MS", 5000),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func intFromEnv(name string, defaultVal int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// CLIArgs is the judge domain's command-line contract (§4.11/§6): a required
// config path and an optional flush-data flag.
type CLIArgs struct {
	ConfigPath string
	FlushData  bool
}

// ParseCLIArgs parses os.Args[1:] with the standard flag package. The
// reference codebase has no CLI parsing of its own to draw from for this
// piece, so flag is the idiomatic minimal choice (documented in DESIGN.md).
func ParseCLIArgs(args []string) (CLIArgs, error) {
	fs := flag.NewFlagSet("oj-core", flag.ContinueOnError)
	var cfg, cfgShort string
	var flush, flushShort bool
	fs.StringVar(&cfg, "config", "", "path to judge config JSON")
	fs.StringVar(&cfgShort, "c", "", "path to judge config JSON (shorthand)")
	fs.BoolVar(&flush, "flush-data", false, "truncate the persistence mirror before loading")
	fs.BoolVar(&flushShort, "f", false, "truncate the persistence mirror before loading (shorthand)")
	if err := fs.Parse(args); err != nil {
		return CLIArgs{}, err
	}
	path := firstNonEmpty(cfg, cfgShort)
	if path == "" {
		return CLIArgs{}, fmt.Errorf("--config|-c is required")
	}
	return CLIArgs{ConfigPath: path, FlushData: flush || flushShort}, nil
}

// domainServerBlock mirrors the JSON config file's "server" object (§6).
type domainServerBlock struct {
	BindAddress string `json:"bind_address"`
	BindPort    int    `json:"bind_port"`
}

type domainCaseJSON struct {
	Score       float64 `json:"score"`
	InputFile   string  `json:"input_file"`
	AnswerFile  string  `json:"answer_file"`
	TimeLimit   int64   `json:"time_limit"`
	MemoryLimit int     `json:"memory_limit"`
}

type domainMiscJSON struct {
	Packing             [][]int   `json:"packing,omitempty"`
	SpecialJudge        []string  `json:"special_judge,omitempty"`
	DynamicRankingRatio *float64  `json:"dynamic_ranking_ratio,omitempty"`
}

type domainProblemJSON struct {
	ID    int               `json:"id"`
	Name  string            `json:"name"`
	Type  string            `json:"type"`
	Misc  *domainMiscJSON   `json:"misc,omitempty"`
	Cases []domainCaseJSON  `json:"cases"`
}

type domainLanguageJSON struct {
	Name     string   `json:"name"`
	FileName string   `json:"file_name"`
	Command  []string `json:"command"`
}

type domainConfigJSON struct {
	Server    domainServerBlock    `json:"server"`
	Problems  []domainProblemJSON  `json:"problems"`
	Languages []domainLanguageJSON `json:"languages"`
}

// DomainConfig is the judge config file's contents after validation: the
// bind address/port plus a ready-to-use judge.ProblemSet.
type DomainConfig struct {
	BindAddress string
	BindPort    int
	Set         judge.ProblemSet
}

// LoadDomainConfig reads and validates the JSON config file named by path,
// pre-flight-checking every case file exactly as the original Rust fread()
// check does: a problem whose input/answer files cannot be opened fails the
// whole load.
func LoadDomainConfig(path string) (DomainConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DomainConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var doc domainConfigJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return DomainConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	problems := make(map[int]judge.Problem, len(doc.Problems))
	for _, p := range doc.Problems {
		pt, ok := judge.ParseProblemType(p.Type)
		if !ok {
			return DomainConfig{}, fmt.Errorf("problem %d: unknown type %q", p.ID, p.Type)
		}
		cases := make([]judge.ProblemCase, len(p.Cases))
		for i, c := range p.Cases {
			in, err := os.Open(c.InputFile)
			if err != nil {
				return DomainConfig{}, fmt.Errorf("problem %d case %d: input file %s: %w", p.ID, i+1, c.InputFile, err)
			}
			in.Close()
			ans, err := os.Open(c.AnswerFile)
			if err != nil {
				return DomainConfig{}, fmt.Errorf("problem %d case %d: answer file %s: %w", p.ID, i+1, c.AnswerFile, err)
			}
			ans.Close()
			cases[i] = judge.ProblemCase{
				Score:       c.Score,
				InputFile:   c.InputFile,
				AnswerFile:  c.AnswerFile,
				TimeLimit:   c.TimeLimit,
				MemoryLimit: c.MemoryLimit,
			}
		}
		var misc *judge.Misc
		if p.Misc != nil {
			misc = &judge.Misc{
				Packing:             p.Misc.Packing,
				SpecialJudge:        p.Misc.SpecialJudge,
				DynamicRankingRatio: p.Misc.DynamicRankingRatio,
			}
		}
		problems[p.ID] = judge.Problem{ID: p.ID, Name: p.Name, Type: pt, Misc: misc, Cases: cases}
	}

	languages := make(map[string]judge.Language, len(doc.Languages))
	for _, l := range doc.Languages {
		languages[l.Name] = judge.Language{Name: l.Name, FileName: l.FileName, Command: l.Command}
	}

	return DomainConfig{
		BindAddress: firstNonEmpty(doc.Server.BindAddress, "0.0.0.0"),
		BindPort:    doc.Server.BindPort,
		Set:         judge.ProblemSet{Problems: problems, Languages: languages},
	}, nil
}

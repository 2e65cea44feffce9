package core

import (
	"os"
	"path/filepath"
	"testing"

	"tuis-oj-prototype/judge"
)

func TestParseCLIArgsRequiresConfig(t *testing.T) {
	_, err := ParseCLIArgs([]string{})
	if err == nil {
		t.Fatalf("expected an error when --config is missing")
	}
}

func TestParseCLIArgsAcceptsShorthand(t *testing.T) {
	args, err := ParseCLIArgs([]string{"-c", "/tmp/config.json", "-f"})
	if err != nil {
		t.Fatalf("ParseCLIArgs: %v", err)
	}
	if args.ConfigPath != "/tmp/config.json" {
		t.Fatalf("expected config path to be parsed, got %q", args.ConfigPath)
	}
	if !args.FlushData {
		t.Fatalf("expected -f to set FlushData")
	}
}

func TestParseCLIArgsLongFormTakesPrecedence(t *testing.T) {
	args, err := ParseCLIArgs([]string{"-c", "/tmp/b.json", "--config", "/tmp/a.json", "--flush-data"})
	if err != nil {
		t.Fatalf("ParseCLIArgs: %v", err)
	}
	if args.ConfigPath != "/tmp/a.json" || !args.FlushData {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestLoadDomainConfigParsesProblemsAndLanguages(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "1.in")
	ansPath := filepath.Join(dir, "1.ans")
	if err := os.WriteFile(inPath, []byte("1 2\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(ansPath, []byte("3\n"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	configJSON := `{
		"server": {"bind_address": "127.0.0.1", "bind_port": 8080},
		"problems": [
			{
				"id": 1,
				"name": "add",
				"type": "standard",
				"cases": [
					{"score": 100, "input_file": "` + inPath + `", "answer_file": "` + ansPath + `", "time_limit": 1000000, "memory_limit": 65536}
				]
			}
		],
		"languages": [
			{"name": "shell", "file_name": "prog.sh", "command": ["/bin/sh", "-c", "cp {src} {out}"]}
		]
	}`
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, []byte(configJSON), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	domain, err := LoadDomainConfig(configPath)
	if err != nil {
		t.Fatalf("LoadDomainConfig: %v", err)
	}
	if domain.BindAddress != "127.0.0.1" || domain.BindPort != 8080 {
		t.Fatalf("unexpected server block: %+v", domain)
	}
	problem, ok := domain.Set.Problems[1]
	if !ok {
		t.Fatalf("expected problem 1 to be loaded")
	}
	if problem.Type != judge.Standard {
		t.Fatalf("expected Standard type, got %v", problem.Type)
	}
	if len(problem.Cases) != 1 || problem.Cases[0].Score != 100 {
		t.Fatalf("unexpected cases: %+v", problem.Cases)
	}
	if _, ok := domain.Set.Languages["shell"]; !ok {
		t.Fatalf("expected shell language to be loaded")
	}
}

func TestLoadDomainConfigFailsOnMissingCaseFile(t *testing.T) {
	dir := t.TempDir()
	configJSON := `{
		"server": {"bind_address": "0.0.0.0", "bind_port": 3000},
		"problems": [
			{"id": 1, "name": "missing", "type": "standard",
			 "cases": [{"score": 100, "input_file": "/no/such/file.in", "answer_file": "/no/such/file.ans", "time_limit": 1000, "memory_limit": 1}]}
		],
		"languages": []
	}`
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, []byte(configJSON), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadDomainConfig(configPath)
	if err == nil {
		t.Fatalf("expected an error for a missing input file")
	}
}

func TestLoadDomainConfigRejectsUnknownProblemType(t *testing.T) {
	dir := t.TempDir()
	configJSON := `{"server": {"bind_address": "0.0.0.0", "bind_port": 3000}, "problems": [{"id": 1, "name": "x", "type": "weird", "cases": []}], "languages": []}`
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, []byte(configJSON), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadDomainConfig(configPath)
	if err == nil {
		t.Fatalf("expected an error for an unknown problem type")
	}
}

func TestLoadAmbientDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_DIR")
	ambient := LoadAmbient()
	if ambient.Port != "3000" {
		t.Fatalf("expected default port 3000, got %q", ambient.Port)
	}
	if ambient.LogDir != "/var/log/oj" {
		t.Fatalf("expected default log dir, got %q", ambient.LogDir)
	}
}

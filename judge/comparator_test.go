package judge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCompareStandardIgnoresTrailingWhitespace(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "1 2 3\n4 5 6\n")
	output := writeTemp(t, dir, "output.txt", "1 2 3  \n4 5 6\t\n")

	verdict, info, err := Compare(context.Background(), Standard, answer, output, nil)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != Accepted {
		t.Fatalf("expected Accepted, got %v", verdict)
	}
	if info != "" {
		t.Fatalf("expected empty info, got %q", info)
	}
}

func TestCompareStandardDifferentLineCount(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "1\n2\n")
	output := writeTemp(t, dir, "output.txt", "1\n")

	verdict, _, err := Compare(context.Background(), Standard, answer, output, nil)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != WrongAnswer {
		t.Fatalf("expected WrongAnswer, got %v", verdict)
	}
}

func TestCompareStrictRejectsTrailingWhitespace(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "abc\n")
	output := writeTemp(t, dir, "output.txt", "abc \n")

	verdict, _, err := Compare(context.Background(), Strict, answer, output, nil)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != WrongAnswer {
		t.Fatalf("strict comparator should reject trailing whitespace, got %v", verdict)
	}
}

func TestCompareStrictByteEqual(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "abc\n")
	output := writeTemp(t, dir, "output.txt", "abc\n")

	verdict, _, err := Compare(context.Background(), Strict, answer, output, nil)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != Accepted {
		t.Fatalf("expected Accepted, got %v", verdict)
	}
}

func TestCompareSpjAccepted(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "42\n")
	output := writeTemp(t, dir, "output.txt", "42\n")
	spjScript := writeTemp(t, dir, "spj.sh", "#!/bin/sh\necho Accepted\necho ok\n")
	if err := os.Chmod(spjScript, 0o755); err != nil {
		t.Fatalf("chmod spj: %v", err)
	}

	verdict, info, err := Compare(context.Background(), Spj, answer, output, []string{spjScript, "fixed-arg"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != Accepted {
		t.Fatalf("expected Accepted, got %v", verdict)
	}
	if info != "ok" {
		t.Fatalf("expected info %q, got %q", "ok", info)
	}
}

func TestCompareSpjErrorOnStderr(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "42\n")
	output := writeTemp(t, dir, "output.txt", "42\n")
	spjScript := writeTemp(t, dir, "spj.sh", "#!/bin/sh\necho Accepted\necho ok\necho boom >&2\n")
	if err := os.Chmod(spjScript, 0o755); err != nil {
		t.Fatalf("chmod spj: %v", err)
	}

	verdict, _, err := Compare(context.Background(), Spj, answer, output, []string{spjScript, "fixed-arg"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != SpjError {
		t.Fatalf("expected SpjError when stderr is non-empty, got %v", verdict)
	}
}

func TestCompareSpjUnknownTokenIsSpjError(t *testing.T) {
	dir := t.TempDir()
	answer := writeTemp(t, dir, "answer.txt", "42\n")
	output := writeTemp(t, dir, "output.txt", "7\n")
	spjScript := writeTemp(t, dir, "spj.sh", "#!/bin/sh\necho Maybe\necho unsure\n")
	if err := os.Chmod(spjScript, 0o755); err != nil {
		t.Fatalf("chmod spj: %v", err)
	}

	verdict, _, err := Compare(context.Background(), Spj, answer, output, []string{spjScript, "fixed-arg"})
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if verdict != SpjError {
		t.Fatalf("expected SpjError for unrecognized verdict token, got %v", verdict)
	}
}

package judge

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Compile writes source to workDir/lang.FileName, substitutes "{src}"/"{out}"
// tokens in lang.Command and runs the resulting toolchain invocation directly
// via os/exec (no sandbox sidecar — see Non-goals). It returns the compile
// pseudo-case (id=0) and the path to the built artifact (meaningful only on
// CompilationSuccess).
func Compile(ctx context.Context, lang Language, source, workDir string, timeout time.Duration) (CaseRecord, string, error) {
	srcPath := filepath.Join(workDir, lang.FileName)
	if err := os.WriteFile(srcPath, []byte(source), 0o644); err != nil {
		return CaseRecord{}, "", err
	}
	artifactPath := filepath.Join(workDir, "a.out")

	if len(lang.Command) == 0 {
		return CaseRecord{}, "", ErrInternal("language has no command vector: " + lang.Name)
	}
	args := make([]string, len(lang.Command)-1)
	for i, tok := range lang.Command[1:] {
		args[i] = substitute(tok, srcPath, artifactPath)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, lang.Command[0], args...)
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Microseconds()

	result := CompilationSuccess
	if runErr != nil || stderr.Len() > 0 {
		result = CompilationError
	}

	return CaseRecord{ID: 0, Result: result, TimeMicros: elapsed, Info: stderr.String()}, artifactPath, nil
}

func substitute(tok, src, out string) string {
	tok = strings.ReplaceAll(tok, "{src}", src)
	tok = strings.ReplaceAll(tok, "{out}", out)
	return tok
}

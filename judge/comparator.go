package judge

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// Compare implements the three answer-comparison modes of §4.1. DynamicRanking
// problems compare exactly as Standard; scoring adjustments happen elsewhere.
// Returns (Accepted, WrongAnswer or SpjError, info).
func Compare(ctx context.Context, problemType ProblemType, answerFile, outputFile string, spj []string) (Result, string, error) {
	switch problemType {
	case Strict:
		return compareStrict(answerFile, outputFile)
	case Spj:
		return compareSpj(ctx, spj, outputFile, answerFile)
	default: // Standard, DynamicRanking
		return compareStandard(answerFile, outputFile)
	}
}

func compareStandard(answerFile, outputFile string) (Result, string, error) {
	want, err := os.ReadFile(answerFile)
	if err != nil {
		return 0, "", err
	}
	got, err := os.ReadFile(outputFile)
	if err != nil {
		return 0, "", err
	}
	if normalizedLines(want) == normalizedLines(got) {
		return Accepted, "", nil
	}
	return WrongAnswer, "", nil
}

// normalizedLines splits on line breaks, trims a single trailing empty line,
// and trims each line's trailing whitespace.
func normalizedLines(b []byte) string {
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.Join(lines, "\n")
}

func compareStrict(answerFile, outputFile string) (Result, string, error) {
	want, err := os.ReadFile(answerFile)
	if err != nil {
		return 0, "", err
	}
	got, err := os.ReadFile(outputFile)
	if err != nil {
		return 0, "", err
	}
	if bytes.Equal(want, got) {
		return Accepted, "", nil
	}
	return WrongAnswer, "", nil
}

// compareSpj invokes spj[0] spj[1] outputFile answerFile and parses its two
// line stdout protocol: line 1 is "Accepted" or "Wrong Answer", line 2 is the
// info string. Any deviation, including non-empty stderr, is SpjError.
func compareSpj(ctx context.Context, spj []string, outputFile, answerFile string) (Result, string, error) {
	if len(spj) < 2 {
		return SpjError, "", nil
	}
	cmd := exec.CommandContext(ctx, spj[0], spj[1], outputFile, answerFile)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return SpjError, firstLineInfo(stdout.Bytes()), nil
	}
	if stderr.Len() > 0 {
		return SpjError, firstLineInfo(stdout.Bytes()), nil
	}
	scanner := bufio.NewScanner(bytes.NewReader(stdout.Bytes()))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	info := ""
	if len(lines) >= 2 {
		info = lines[1]
	}
	if len(lines) != 2 {
		return SpjError, info, nil
	}
	switch lines[0] {
	case "Accepted":
		return Accepted, info, nil
	case "Wrong Answer":
		return WrongAnswer, info, nil
	default:
		return SpjError, info, nil
	}
}

func firstLineInfo(stdout []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	if scanner.Scan() {
		// first line was the verdict token; info (if any) is the next line.
		if scanner.Scan() {
			return scanner.Text()
		}
	}
	return ""
}

package judge

import "time"

// TimeLayout is the exact ISO-8601 layout used for every timestamp the core
// parses or emits: millisecond precision with a literal Z suffix.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// SentinelFuture is the "no submission" sentinel used when a user/problem
// pair has no matching job: far enough in the future to always sort last in
// an ascending-by-time comparison.
var SentinelFuture = mustParse("9999-12-31T23:59:59.999Z")

func mustParse(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatTime renders t in the wire timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses the wire timestamp format.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidArgument("invalid timestamp: " + s)
	}
	return t.UTC(), nil
}

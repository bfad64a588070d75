package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustParse(t *testing.T, expr string) *cronSpec {
	t.Helper()
	spec, err := parseCron(expr)
	if err != nil {
		t.Fatalf("parseCron(%q): %v", expr, err)
	}
	return spec
}

func at(hour, min, sec int) time.Time {
	// 2026-03-04 is a Wednesday.
	return time.Date(2026, time.March, 4, hour, min, sec, 0, time.UTC)
}

func TestParseFiveFieldFiresAtSecondZero(t *testing.T) {
	spec := mustParse(t, "0 17 * * *")

	if !spec.matches(at(17, 0, 0)) {
		t.Error("expected match at 17:00:00")
	}
	if spec.matches(at(17, 0, 30)) {
		t.Error("five-field expression must only fire at second 0")
	}
	if spec.matches(at(16, 0, 0)) {
		t.Error("unexpected match at 16:00:00")
	}
}

func TestParseSixFieldSecondsGranularity(t *testing.T) {
	spec := mustParse(t, "30 15 22 * * *")

	if !spec.matches(at(22, 15, 30)) {
		t.Error("expected match at 22:15:30")
	}
	if spec.matches(at(22, 15, 0)) {
		t.Error("unexpected match at 22:15:00")
	}
}

func TestParseStepsRangesAndLists(t *testing.T) {
	spec := mustParse(t, "*/15 9-17 * * 1,3,5")

	// 2026-03-04 is a Wednesday (weekday 3).
	if !spec.matches(at(9, 30, 0)) {
		t.Error("expected match at 09:30 on Wednesday")
	}
	if spec.matches(at(9, 10, 0)) {
		t.Error("minute 10 is not a multiple of 15")
	}
	if spec.matches(at(18, 0, 0)) {
		t.Error("hour 18 is outside 9-17")
	}

	// 2026-03-05 is a Thursday (weekday 4) — not in the list.
	thursday := time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)
	if spec.matches(thursday) {
		t.Error("unexpected match on Thursday")
	}
}

func TestParseRejectsMalformedExpressions(t *testing.T) {
	cases := []string{
		"",
		"0 17 * *",         // four fields
		"0 0 17 * * * *",   // seven fields
		"61 * * * *",       // minute out of range
		"0 25 * * *",       // hour out of range
		"0 17 0 * *",       // day-of-month below 1
		"0 17 * 13 *",      // month out of range
		"0 17 * * 7",       // day-of-week above 6
		"x 17 * * *",       // non-numeric
		"*/0 * * * *",      // zero step
		"10-5 * * * *",     // inverted range
	}
	for _, expr := range cases {
		if _, err := parseCron(expr); !errors.Is(err, ErrInvalidExpression) {
			t.Errorf("parseCron(%q): want ErrInvalidExpression, got %v", expr, err)
		}
	}
}

func TestParseListWithRanges(t *testing.T) {
	spec := mustParse(t, "0 0 6,18-20 * * *")

	for _, h := range []int{6, 18, 19, 20} {
		if !spec.matches(at(h, 0, 0)) {
			t.Errorf("expected match at %02d:00:00", h)
		}
	}
	if spec.matches(at(12, 0, 0)) {
		t.Error("unexpected match at 12:00:00")
	}
}

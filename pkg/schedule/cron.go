package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// cronField is a set of permitted values for one cron position, stored as a
// bitmask (values never exceed 63).
type cronField uint64

func (f cronField) match(v int) bool { return f&(1<<uint(v)) != 0 }

// cronSpec is a parsed cron expression. Five-field expressions
// (minute hour dom month dow) fire at second 0; six-field expressions carry
// an explicit leading seconds position.
type cronSpec struct {
	second cronField
	minute cronField
	hour   cronField
	dom    cronField
	month  cronField
	dow    cronField
}

// fieldBound describes the legal range of one cron position.
type fieldBound struct {
	name string
	min  int
	max  int
}

var bounds = []fieldBound{
	{"second", 0, 59},
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

// parseCron accepts "minute hour dom month dow" or
// "second minute hour dom month dow". Each field supports
// *, N, A-B, */S, A-B/S and comma lists.
func parseCron(expr string) (*cronSpec, error) {
	fields := strings.Fields(expr)

	switch len(fields) {
	case 5:
		// Implicit seconds position: fire at second 0.
		fields = append([]string{"0"}, fields...)
	case 6:
	default:
		return nil, fmt.Errorf("%w %q: want 5 or 6 fields, got %d", ErrInvalidExpression, expr, len(fields))
	}

	parsed := make([]cronField, 6)
	for i, raw := range fields {
		f, err := parseField(raw, bounds[i])
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidExpression, expr, err)
		}
		parsed[i] = f
	}

	return &cronSpec{
		second: parsed[0],
		minute: parsed[1],
		hour:   parsed[2],
		dom:    parsed[3],
		month:  parsed[4],
		dow:    parsed[5],
	}, nil
}

func parseField(raw string, b fieldBound) (cronField, error) {
	var field cronField
	for _, part := range strings.Split(raw, ",") {
		f, err := parsePart(part, b)
		if err != nil {
			return 0, err
		}
		field |= f
	}
	return field, nil
}

func parsePart(part string, b fieldBound) (cronField, error) {
	if part == "" {
		return 0, fmt.Errorf("empty %s field", b.name)
	}

	step := 1
	if idx := strings.IndexByte(part, '/'); idx >= 0 {
		s, err := strconv.Atoi(part[idx+1:])
		if err != nil || s < 1 {
			return 0, fmt.Errorf("bad step in %s field %q", b.name, part)
		}
		step = s
		part = part[:idx]
	}

	lo, hi := b.min, b.max
	switch {
	case part == "*":
		// full range
	case strings.Contains(part, "-"):
		segs := strings.SplitN(part, "-", 2)
		a, errA := strconv.Atoi(segs[0])
		z, errZ := strconv.Atoi(segs[1])
		if errA != nil || errZ != nil || a > z {
			return 0, fmt.Errorf("bad range in %s field %q", b.name, part)
		}
		lo, hi = a, z
	default:
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("bad value in %s field %q", b.name, part)
		}
		lo, hi = n, n
	}

	if lo < b.min || hi > b.max {
		return 0, fmt.Errorf("%s value out of range %d-%d in %q", b.name, b.min, b.max, part)
	}

	var field cronField
	for v := lo; v <= hi; v += step {
		field |= 1 << uint(v)
	}
	return field, nil
}

// matches reports whether the spec fires at t. The caller is responsible
// for converting t into the scheduler's timezone first.
func (s *cronSpec) matches(t time.Time) bool {
	return s.second.match(t.Second()) &&
		s.minute.match(t.Minute()) &&
		s.hour.match(t.Hour()) &&
		s.dom.match(t.Day()) &&
		s.month.match(int(t.Month())) &&
		s.dow.match(int(t.Weekday()))
}

package config

import "testing"

func TestSyncMinutesBounds(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"15", 15},
		{"1", 1},
		{"59", 59},
		{"90", 59}, // above the minute field: clamped, never silently hourly
		{"0", defaultSyncMinutes},
		{"-5", defaultSyncMinutes},
		{"often", defaultSyncMinutes},
	}
	for _, c := range cases {
		if got := syncMinutes(c.raw); got != c.want {
			t.Errorf("syncMinutes(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

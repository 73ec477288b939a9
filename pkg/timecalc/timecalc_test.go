package timecalc

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeHours(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"09:00", "17:00", "8"},
		{"08:00", "12:15", "4.25"},
		{"13:00", "16:45", "3.75"},
		{"09:00", "09:00", "0"},     // zero-duration, not an error here
		{"22:00", "06:00", "8"},     // overnight wrap
		{"23:30", "00:15", "0.75"},  // overnight wrap across midnight
		{"09:00", "09:07", "0"},     // 7 min rounds down
		{"09:00", "09:08", "0.25"},  // 8 min rounds up
		{"09:00", "09:22", "0.25"},  // 22 min rounds down to one quarter
		{"09:00", "09:23", "0.5"},   // 23 min rounds up to two quarters
		{"00:00", "23:59", "24"},    // rounds up to the full day
	}
	for _, tt := range tests {
		got, err := ComputeHours(tt.start, tt.end)
		if err != nil {
			t.Errorf("ComputeHours(%s, %s) failed: %v", tt.start, tt.end, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ComputeHours(%s, %s) = %s, want %s", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestComputeHoursAlwaysQuarterMultiple(t *testing.T) {
	quarter := decimal.RequireFromString("0.25")
	starts := []string{"08:00", "08:03", "08:11", "08:29", "08:58"}
	ends := []string{"09:01", "12:44", "17:59", "03:30", "08:58"}
	for _, s := range starts {
		for _, e := range ends {
			got, err := ComputeHours(s, e)
			if err != nil {
				t.Fatalf("ComputeHours(%s, %s) failed: %v", s, e, err)
			}
			if !got.Mod(quarter).IsZero() {
				t.Errorf("ComputeHours(%s, %s) = %s, not a multiple of 0.25", s, e, got)
			}
		}
	}
}

func TestQuarterRound(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.1", "1"},     // 4.4 quarters rounds down
		{"2.9", "3"},     // 11.6 quarters rounds up
		{"0.125", "0.25"}, // half a quarter rounds up
		{"0.1", "0"},     // below half a quarter snaps to zero
		{"4.25", "4.25"}, // already on the grid
		{"8", "8"},
	}
	for _, tt := range tests {
		got := QuarterRound(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("QuarterRound(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestComputeHoursInvalid(t *testing.T) {
	bad := []string{"", "9", "25:00", "09:60", "9am", "09:00:00", "-1:30"}
	for _, input := range bad {
		if _, err := ComputeHours(input, "10:00"); !errors.Is(err, ErrInvalidClock) {
			t.Errorf("start %q: expected ErrInvalidClock, got %v", input, err)
		}
		if _, err := ComputeHours("10:00", input); !errors.Is(err, ErrInvalidClock) {
			t.Errorf("end %q: expected ErrInvalidClock, got %v", input, err)
		}
	}
}

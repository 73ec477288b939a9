package caldate

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateOnly(t *testing.T) {
	d, err := Parse("2024-03-01")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Year != 2024 || d.Month != time.March || d.Day != 1 {
		t.Errorf("got %v, want 2024-03-01", d)
	}
	if d.String() != "2024-03-01" {
		t.Errorf("String() = %q, want 2024-03-01", d.String())
	}
}

func TestParseRFC3339(t *testing.T) {
	// The civil day comes from the timestamp's own offset, not UTC.
	d, err := Parse("2024-03-01T23:30:00-05:00")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.String() != "2024-03-01" {
		t.Errorf("got %s, want 2024-03-01", d)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "03/01/2024", "2024-13-01", "tomorrow"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Parse(%q): expected ErrInvalidDate, got %v", input, err)
		}
	}
}

func TestRoundTripUnderOffsetZone(t *testing.T) {
	// A date-only string must render back unchanged even when the process
	// runs behind UTC.
	loc := time.FixedZone("UTC-8", -8*3600)
	old := time.Local
	time.Local = loc
	defer func() { time.Local = old }()

	d, err := Parse("2024-03-01")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := d.String(); got != "2024-03-01" {
		t.Errorf("roundtrip changed the day: got %s", got)
	}
}

func TestAddDays(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 28}
	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Errorf("leap day: got %s", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("month rollover: got %s", got)
	}
	if got := d.AddDays(-28).String(); got != "2024-01-31" {
		t.Errorf("negative: got %s", got)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-01-31", 30},
		{"2024-01-31", "2024-01-01", -30},
		{"2024-02-28", "2024-03-01", 2},    // leap year
		{"2024-03-01", "2024-04-01", 31},   // range spans a US DST transition
		{"2023-12-31", "2024-12-31", 366},  // leap year span
	}
	for _, tt := range tests {
		a, _ := Parse(tt.a)
		b, _ := Parse(tt.b)
		if got := DaysBetween(a, b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAfterBefore(t *testing.T) {
	a, _ := Parse("2024-06-01")
	b, _ := Parse("2024-06-02")
	if !b.After(a) || a.After(b) || a.After(a) {
		t.Error("After comparisons wrong")
	}
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Error("Before comparisons wrong")
	}
}

func TestTimeIsUTCMidnight(t *testing.T) {
	d, _ := Parse("2024-03-01")
	got := d.Time()
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}

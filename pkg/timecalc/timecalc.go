package timecalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidClock is returned when a wall-clock string is not HH:MM.
var ErrInvalidClock = errors.New("invalid clock time")

var four = decimal.NewFromInt(4)

// ComputeHours converts a wall-clock shift into billable hours. Both times
// are on the same nominal calendar day; a negative raw span means the shift
// crossed midnight and wraps by 24 hours (22:00–06:00 is 8.00). The result
// is rounded to the nearest quarter hour and is always a multiple of 0.25.
//
// start == end yields 0.00; rejecting zero-duration work belongs to the
// invoice builder, not here.
func ComputeHours(start, end string) (decimal.Decimal, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return decimal.Zero, err
	}

	raw := endMin - startMin
	if raw < 0 {
		raw += 24 * 60
	}

	// Round half up to the nearest 15-minute block, then express as hours.
	quarters := (raw + 7) / 15
	return decimal.NewFromInt(int64(quarters)).Div(four), nil
}

// QuarterRound snaps an hour figure to the nearest quarter hour, half up.
// Manually entered hours go through this so every line item sits on the
// same quarter grid as clock-derived durations.
func QuarterRound(hours decimal.Decimal) decimal.Decimal {
	return hours.Mul(four).Round(0).Div(four)
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

package hanoi

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrEmptyInput is returned when a solve is requested with no disk count.
	ErrEmptyInput = errors.New("hanoi: enter a disk count between 1 and 12")

	// ErrInvalidInput indicates text that is not an integer.
	ErrInvalidInput = errors.New("hanoi: disk count must be an integer")

	// ErrDiskCount indicates a disk count outside [MinDisks, MaxDisks].
	ErrDiskCount = errors.New("hanoi: disk count out of range")

	ErrUnknownPeg = errors.New("hanoi: unknown peg")
)

// ClampDisks pulls n into [MinDisks, MaxDisks].
func ClampDisks(n int) int {
	if n < MinDisks {
		return MinDisks
	}
	if n > MaxDisks {
		return MaxDisks
	}
	return n
}

// ValidateDisks reports n outside [MinDisks, MaxDisks] without correcting it.
func ValidateDisks(n int) error {
	if n < MinDisks || n > MaxDisks {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrDiskCount, n, MinDisks, MaxDisks)
	}
	return nil
}

// ParseDisks reads a disk count typed by a user. Out-of-range numbers are
// clamped; empty and non-numeric text are errors.
func ParseDisks(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyInput
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInput, s)
		}
		// "3.7" in a number field reads as 3
		if f < MinDisks {
			return MinDisks, nil
		}
		if f > MaxDisks {
			return MaxDisks, nil
		}
		n = int(f)
	}
	return ClampDisks(n), nil
}

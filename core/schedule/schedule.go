// Package schedule computes the effective release dates of a scheduled
// transfer. Planned dates that are not after the cutoff are folded into the
// first release, which itself is clamped to the cutoff.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects between the single-release and the multi-release schedule.
type Mode int

const (
	// ModeMulti releases an initial amount followed by monthly instalments.
	ModeMulti Mode = iota
	// ModeWelcome releases the whole amount at once.
	ModeWelcome
)

func (m Mode) String() string {
	switch m {
	case ModeMulti:
		return "multi"
	case ModeWelcome:
		return "welcome"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Columns returns the number of input fields a row carries in this mode.
func (m Mode) Columns() int {
	if m == ModeWelcome {
		return 3
	}
	return 4
}

var (
	// ErrInitialAfterRemaining is returned when the initial release is planned
	// after the first monthly release.
	ErrInitialAfterRemaining = errors.New("initial release date is after the first remaining release date")
	// ErrTooFewReleases is returned when a multi-release schedule has fewer than two releases.
	ErrTooFewReleases = errors.New("multi-release schedule needs at least two releases")
	// ErrMissingDate is returned when a configured date is zero.
	ErrMissingDate = errors.New("release date is not configured")
)

// Config is the immutable set of planned release dates.
type Config struct {
	WelcomeDate    time.Time
	InitialDate    time.Time
	FirstRemaining time.Time
	// Releases is the total number of planned multi-mode releases,
	// including the initial one.
	Releases int
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.WelcomeDate.IsZero() || c.InitialDate.IsZero() || c.FirstRemaining.IsZero() {
		return ErrMissingDate
	}
	if c.Releases < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewReleases, c.Releases)
	}
	if c.InitialDate.After(c.FirstRemaining) {
		return fmt.Errorf("%w: %s > %s", ErrInitialAfterRemaining,
			c.InitialDate.Format(time.RFC3339), c.FirstRemaining.Format(time.RFC3339))
	}
	return nil
}

// Total returns the number of planned releases for mode.
func (c Config) Total(mode Mode) int {
	if mode == ModeWelcome {
		return 1
	}
	return c.Releases
}

// Planned returns the configured release dates for mode, before any folding.
// Remaining releases are spaced one calendar month apart; a day past the
// end of a shorter month is clamped to its last day.
func (c Config) Planned(mode Mode) []time.Time {
	if mode == ModeWelcome {
		return []time.Time{c.WelcomeDate}
	}
	dates := make([]time.Time, 0, c.Releases)
	dates = append(dates, c.InitialDate)
	for i := 0; i < c.Releases-1; i++ {
		dates = append(dates, AddMonths(c.FirstRemaining, i))
	}
	return dates
}

// Effective is the schedule that remains after folding elapsed releases.
type Effective struct {
	Dates []time.Time
	// Skipped counts planned releases merged into Dates[0]. The initial
	// release is clamped, never skipped.
	Skipped int
}

// Build computes the effective schedule relative to cutoff, the earliest
// permitted release instant. A remaining date equal to cutoff is folded.
func Build(mode Mode, cfg Config, cutoff time.Time) (Effective, error) {
	if err := cfg.Validate(); err != nil {
		return Effective{}, err
	}
	planned := cfg.Planned(mode)
	eff := Effective{Dates: make([]time.Time, 0, len(planned))}
	eff.Dates = append(eff.Dates, latest(planned[0], cutoff))
	for _, d := range planned[1:] {
		if d.After(cutoff) {
			eff.Dates = append(eff.Dates, d)
			continue
		}
		eff.Skipped++
	}
	return eff, nil
}

// AddMonths moves t forward by n calendar months, keeping the time of day
// and clamping the day to the length of the target month.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func latest(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

// Cutoff returns the first instant at timeOfDay in loc that is not before
// now+minLead.
func Cutoff(now time.Time, minLead time.Duration, timeOfDay TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	earliest := now.Add(minLead).In(loc)
	c := time.Date(earliest.Year(), earliest.Month(), earliest.Day(), timeOfDay.Hour, timeOfDay.Minute, 0, 0, loc)
	if c.Before(earliest) {
		c = c.AddDate(0, 0, 1)
	}
	return c
}

package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/schedulegen/core/schedule"
)

// ScheduleConfig holds the planned release dates.
type ScheduleConfig struct {
	// Releases is the number of multi-mode releases, initial one included.
	Releases int `json:"releases"`
	// Dates accept YYYY-MM-DD (placed at ReleaseTime) or RFC3339.
	WelcomeDate        string `json:"welcome_date"`
	InitialDate        string `json:"initial_date"`
	FirstRemainingDate string `json:"first_remaining_date"`
	ReleaseTime        string `json:"release_time"`
	// CutoffTime is the time of day of the earliest permitted release.
	CutoffTime string `json:"cutoff_time"`
	// Location is the IANA zone used for dates and times of day.
	Location string `json:"location"`
	// MinLead is the minimum distance between now and the cutoff.
	MinLead time.Duration `json:"min_lead"`
}

// Validate parses every date and checks the schedule invariants.
func (c ScheduleConfig) Validate() error {
	if c.MinLead < 0 {
		return fmt.Errorf("min_lead must not be negative")
	}
	if _, err := c.Cutoff(); err != nil {
		return err
	}
	sc, err := c.Resolve()
	if err != nil {
		return err
	}
	return sc.Validate()
}

// Zone loads the configured location: an IANA name or a fixed UTC offset
// such as "+01:00".
func (c ScheduleConfig) Zone() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	if c.Location[0] == '+' || c.Location[0] == '-' {
		t, err := time.Parse("-07:00", c.Location)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", c.Location, err)
		}
		_, offset := t.Zone()
		return time.FixedZone(c.Location, offset), nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", c.Location, err)
	}
	return loc, nil
}

// Cutoff parses the cutoff time of day.
func (c ScheduleConfig) Cutoff() (schedule.TimeOfDay, error) {
	return schedule.ParseTimeOfDay(c.CutoffTime)
}

// Resolve turns the textual dates into a schedule.Config.
func (c ScheduleConfig) Resolve() (schedule.Config, error) {
	loc, err := c.Zone()
	if err != nil {
		return schedule.Config{}, err
	}
	at, err := schedule.ParseTimeOfDay(c.ReleaseTime)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("release_time: %w", err)
	}
	welcome, err := schedule.ParseDate(c.WelcomeDate, at, loc)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("welcome_date: %w", err)
	}
	initial, err := schedule.ParseDate(c.InitialDate, at, loc)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("initial_date: %w", err)
	}
	first, err := schedule.ParseDate(c.FirstRemainingDate, at, loc)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("first_remaining_date: %w", err)
	}
	return schedule.Config{
		WelcomeDate:    welcome,
		InitialDate:    initial,
		FirstRemaining: first,
		Releases:       c.Releases,
	}, nil
}

// CutoffAt returns the earliest permitted release instant for now.
func (c ScheduleConfig) CutoffAt(now time.Time) (time.Time, error) {
	loc, err := c.Zone()
	if err != nil {
		return time.Time{}, err
	}
	tod, err := c.Cutoff()
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Cutoff(now, c.MinLead, tod, loc), nil
}

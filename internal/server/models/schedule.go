package models

import "time"

// Schedule describes a recurring capture window. A schedule is due when it is
// enabled and at least Interval has passed since LastTriggered (or since
// creation if it never fired).
type Schedule struct {
	ID            string
	Name          string
	Topics        string
	Interval      time.Duration
	DurationLimit time.Duration
	Enabled       bool
	LastTriggered *time.Time
	CreatedAt     time.Time
}

// Due reports whether the schedule should fire at the given time.
func (s *Schedule) Due(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	last := s.CreatedAt
	if s.LastTriggered != nil {
		last = *s.LastTriggered
	}
	return !now.Before(last.Add(s.Interval))
}

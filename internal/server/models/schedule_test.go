package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_Due(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fired := base.Add(30 * time.Second)

	tests := []struct {
		name     string
		schedule Schedule
		now      time.Time
		want     bool
	}{
		{
			name:     "disabled never due",
			schedule: Schedule{Enabled: false, Interval: time.Second, CreatedAt: base},
			now:      base.Add(time.Hour),
			want:     false,
		},
		{
			name:     "never fired, interval elapsed since creation",
			schedule: Schedule{Enabled: true, Interval: time.Minute, CreatedAt: base},
			now:      base.Add(time.Minute),
			want:     true,
		},
		{
			name:     "never fired, interval not elapsed",
			schedule: Schedule{Enabled: true, Interval: time.Minute, CreatedAt: base},
			now:      base.Add(30 * time.Second),
			want:     false,
		},
		{
			name:     "fired recently",
			schedule: Schedule{Enabled: true, Interval: time.Minute, CreatedAt: base, LastTriggered: &fired},
			now:      fired.Add(59 * time.Second),
			want:     false,
		},
		{
			name:     "fired long ago",
			schedule: Schedule{Enabled: true, Interval: time.Minute, CreatedAt: base, LastTriggered: &fired},
			now:      fired.Add(time.Minute),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.Due(tt.now))
		})
	}
}

package models

import "time"

// Recording statuses as stored in the recordings table.
const (
	RecordingStatusRunning  = "running"
	RecordingStatusFinished = "finished"
	RecordingStatusFailed   = "failed"
)

// Recording describes one captured bag file. StorageKey is reserved when the
// capture starts and locates the bag in the S3-compatible object store once
// the capture finishes.
type Recording struct {
	ID         string
	BagName    string
	Topics     string
	SizeBytes  int64
	Status     string
	StorageKey string
	StartedAt  time.Time
	FinishedAt *time.Time
}

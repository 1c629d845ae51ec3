package domain

import "time"

// LogSnapshot is the bounded boot-to-now log slice handed to the extractor.
// It lives only for one analysis session and is never written to durable
// storage; the capture source itself resets on reboot.
type LogSnapshot struct {
	Text        string
	FailedUnits string
	BootTime    time.Time
	CapturedAt  time.Time
	Truncated   bool
}

// Empty reports whether the snapshot carries no log text at all. An empty
// snapshot is a capture failure, not a clean system.
func (s LogSnapshot) Empty() bool {
	return s.Text == ""
}

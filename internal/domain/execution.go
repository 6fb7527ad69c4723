package domain

import "time"

// Execution records one invocation of the tool against a course.
type Execution struct {
	ID        int64
	Course    string
	StartedAt time.Time
	Host      string
	Command   string
	Version   string
}

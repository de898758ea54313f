package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is a driver's presence on a given day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLeave   AttendanceStatus = "Leave"
)

// Valid reports whether s is a known attendance status.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent || s == AttendanceLeave
}

// Attendance is one driver's record for one calendar day.
// Marking the same day again overwrites the previous record.
type Attendance struct {
	DriverID uuid.UUID
	Date     time.Time
	Status   AttendanceStatus
	Notes    string
	MarkedAt time.Time
}

package attendance

import (
	"errors"
	"time"
)

// Status is the recorded outcome for one student in one session.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Provenance records who initiated a marking action.
type Provenance string

const (
	ProvenanceStudent Provenance = "student"
	ProvenanceAdmin   Provenance = "admin"
	ProvenanceSystem  Provenance = "system"
)

// Failure outcomes of the recorder. Each precondition maps to exactly one of
// these so the boundary layer can render a specific message.
var (
	ErrSessionNotFound  = errors.New("class session not found")
	ErrSessionNotActive = errors.New("class session is not currently active")
	ErrNotEnrolled      = errors.New("not enrolled in this course")
	ErrAlreadyMarked    = errors.New("attendance already marked for this session")
)

// Record is one (account, session) attendance outcome. At most one record
// exists per pair; the storage layer enforces this.
type Record struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	CourseID  string     `json:"course_id"`
	SessionID string     `json:"session_id"`
	Status    Status     `json:"status"`
	MarkedAt  time.Time  `json:"marked_at"`
	MarkedBy  Provenance `json:"marked_by"`
}

// SessionRecord is a record joined with its session's schedule.
type SessionRecord struct {
	Record
	SessionDate time.Time `json:"session_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
}

// RosterEntry is one enrolled student and whether a record exists for them.
type RosterEntry struct {
	AccountID string
	FullName  string
	MatricNo  string
	Present   bool
}

// StudentStatus is a roster entry with the derived present/absent status.
type StudentStatus struct {
	AccountID string `json:"id"`
	FullName  string `json:"name"`
	MatricNo  string `json:"matric_no"`
	Status    Status `json:"status"`
}

// LiveReport is the admin view of a session in progress. Absence is derived
// from the roster, never stored.
type LiveReport struct {
	SessionID     string          `json:"session_id"`
	CourseCode    string          `json:"course_code"`
	CourseTitle   string          `json:"course_title"`
	TotalEnrolled int             `json:"total_enrolled"`
	PresentCount  int             `json:"present_count"`
	Students      []StudentStatus `json:"students"`
}

// Tally is a present/total pair for percentage computation.
type Tally struct {
	Total   int
	Present int
}

// WeekRecord is one attendance outcome inside a week bucket.
type WeekRecord struct {
	Date        time.Time `json:"date"`
	Status      Status    `json:"status"`
	Time        string    `json:"time"`
	SessionTime string    `json:"session_time"`
}

// WeekBucket groups a week's records under its Monday start date.
type WeekBucket struct {
	Key       string       `json:"week"`
	WeekStart time.Time    `json:"week_start"`
	Records   []WeekRecord `json:"records"`
}

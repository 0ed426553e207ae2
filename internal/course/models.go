package course

import (
	"crypto/rand"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrCodeExists      = errors.New("a course with this code already exists")
	ErrInvalidJoinCode = errors.New("invalid course code")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
)

// Course is a unit students enroll in via its join code.
type Course struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Lecturer      string    `json:"lecturer"`
	Description   string    `json:"description,omitempty"`
	JoinCode      string    `json:"join_code,omitempty"`
	EnrolledCount int       `json:"enrolled_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Enrollment links an account to a course. At most one per pair.
type Enrollment struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// joinCodeAlphabet avoids 0/O and 1/I so codes survive being read aloud.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLength = 8

// NewJoinCode generates a random self-enrollment token.
func NewJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

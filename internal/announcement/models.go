package announcement

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an announcement id does not exist.
var ErrNotFound = errors.New("announcement not found")

// Priority tags an announcement's urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Announcement is a notice posted by an admin. CourseID is nil for general
// announcements visible to everyone.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CourseID  *string   `json:"course_id,omitempty"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// View is an announcement as one account sees it, with the derived read flag.
type View struct {
	Announcement
	AuthorName string  `json:"author"`
	CourseCode *string `json:"course_code,omitempty"`
	IsRead     bool    `json:"is_read"`
}

// Feed is the listing plus its unread tally.
type Feed struct {
	Announcements []View `json:"announcements"`
	UnreadCount   int    `json:"unread_count"`
}

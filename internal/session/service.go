package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("class session not found")

// Session is one scheduled meeting of a course. StartTime and EndTime are
// HH:MM times of day on Date. Status is an informational tag; whether the
// session accepts attendance is derived from the clock, never from Status.
type Session struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// WindowAt evaluates the attendance window for this session at now.
func (s Session) WindowAt(now time.Time) (State, error) {
	return Window(s.Date, s.StartTime, s.EndTime, now)
}

// Info is a session joined with its course for listings.
type Info struct {
	Session
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Window      State  `json:"window,omitempty"`
}

// Repository persists class sessions.
type Repository interface {
	InsertSession(ctx context.Context, s Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, s Session) (Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]Info, error)
	// ListUpcoming returns the next sessions, soonest first, for courses the
	// account is enrolled in, with session dates on or after the given day.
	ListUpcoming(ctx context.Context, accountID string, from time.Time, limit int) ([]Info, error)
	ListOnDate(ctx context.Context, date time.Time) ([]Info, error)
}

// Service manages the class schedule.
type Service struct {
	repo Repository
}

// NewService creates a session service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create schedules a session after validating its window.
func (svc *Service) Create(ctx context.Context, s Session) (Session, error) {
	if _, err := Window(s.Date, s.StartTime, s.EndTime, s.Date); err != nil {
		return Session{}, err
	}
	if s.Status == "" {
		s.Status = "scheduled"
	}
	return svc.repo.InsertSession(ctx, s)
}

// Get returns one session.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

// Update edits a session, re-validating the window.
func (svc *Service) Update(ctx context.Context, s Session) (Session, error) {
	if _, err := Window(s.Date, s.StartTime, s.EndTime, s.Date); err != nil {
		return Session{}, err
	}
	return svc.repo.UpdateSession(ctx, s)
}

// Delete removes a session and, via the storage cascade, its attendance records.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSession(ctx, id)
}

// List returns every session with its window state evaluated at now.
func (svc *Service) List(ctx context.Context, now time.Time) ([]Info, error) {
	infos, err := svc.repo.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	annotate(infos, now)
	return infos, nil
}

// Upcoming returns the next sessions for an account's enrolled courses.
func (svc *Service) Upcoming(ctx context.Context, accountID string, now time.Time, limit int) ([]Info, error) {
	if limit <= 0 {
		limit = 5
	}
	infos, err := svc.repo.ListUpcoming(ctx, accountID, midnight(now), limit)
	if err != nil {
		return nil, err
	}
	annotate(infos, now)
	return infos, nil
}

// Today returns all sessions scheduled on now's calendar day.
func (svc *Service) Today(ctx context.Context, now time.Time) ([]Info, error) {
	infos, err := svc.repo.ListOnDate(ctx, midnight(now))
	if err != nil {
		return nil, err
	}
	annotate(infos, now)
	return infos, nil
}

func annotate(infos []Info, now time.Time) {
	for i := range infos {
		// Sessions already persisted have validated windows; an evaluation
		// error here means bad data and the state is simply left blank.
		if st, err := infos[i].WindowAt(now); err == nil {
			infos[i].Window = st
		}
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

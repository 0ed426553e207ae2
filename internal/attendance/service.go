package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"classtrack/internal/metrics"
	"classtrack/internal/session"
)

// Repository persists attendance records and answers the queries the
// recorder and aggregation engine need.
type Repository interface {
	// GetSession returns the session or ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (session.Session, error)
	CourseHeader(ctx context.Context, courseID string) (code, title string, err error)
	IsEnrolled(ctx context.Context, accountID, courseID string) (bool, error)
	HasRecord(ctx context.Context, accountID, sessionID string) (bool, error)
	// InsertRecord writes a record; a unique-constraint violation on
	// (account, session) is returned as ErrAlreadyMarked.
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	GetRecord(ctx context.Context, id string) (Record, error)
	Roster(ctx context.Context, sessionID, courseID string) ([]RosterEntry, error)
	// CountRecords tallies an account's records; courseID == "" means all courses.
	CountRecords(ctx context.Context, accountID, courseID string) (Tally, error)
	// RecentWithSessions returns up to limit records joined with their
	// session, ordered by session date descending.
	RecentWithSessions(ctx context.Context, accountID, courseID string, limit int) ([]SessionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]SessionRecord, error)
}

// Service is the attendance recorder and aggregation engine.
type Service struct {
	repo Repository
}

// NewService creates a service backed by a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Mark records attendance for one account in one session. Preconditions are
// checked in order, each with its own failure; nothing is written on failure.
// The final insert still races a concurrent duplicate, and the storage
// uniqueness constraint resolves that race as ErrAlreadyMarked.
func (s *Service) Mark(ctx context.Context, accountID, sessionID string, now time.Time, by Provenance) (Record, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			metrics.MarkRejections.WithLabelValues("session_not_found").Inc()
		}
		return Record{}, err
	}
	state, err := sess.WindowAt(now)
	if err != nil {
		return Record{}, err
	}
	if state != session.StateActive {
		metrics.MarkRejections.WithLabelValues("session_not_active").Inc()
		return Record{}, ErrSessionNotActive
	}
	enrolled, err := s.repo.IsEnrolled(ctx, accountID, sess.CourseID)
	if err != nil {
		return Record{}, err
	}
	if !enrolled {
		metrics.MarkRejections.WithLabelValues("not_enrolled").Inc()
		return Record{}, ErrNotEnrolled
	}
	marked, err := s.repo.HasRecord(ctx, accountID, sessionID)
	if err != nil {
		return Record{}, err
	}
	if marked {
		metrics.MarkRejections.WithLabelValues("already_marked").Inc()
		return Record{}, ErrAlreadyMarked
	}

	rec, err := s.repo.InsertRecord(ctx, Record{
		AccountID: accountID,
		CourseID:  sess.CourseID,
		SessionID: sessionID,
		Status:    StatusPresent,
		MarkedAt:  now,
		MarkedBy:  by,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyMarked) {
			metrics.MarkRejections.WithLabelValues("already_marked").Inc()
		}
		return Record{}, err
	}
	metrics.MarksTotal.WithLabelValues(string(by)).Inc()
	return rec, nil
}

// Live reports the state of a session: every enrolled student with a derived
// present/absent status plus the counts. Absence is computed, never stored.
func (s *Service) Live(ctx context.Context, sessionID string) (LiveReport, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return LiveReport{}, err
	}
	code, title, err := s.repo.CourseHeader(ctx, sess.CourseID)
	if err != nil {
		return LiveReport{}, err
	}
	roster, err := s.repo.Roster(ctx, sessionID, sess.CourseID)
	if err != nil {
		return LiveReport{}, err
	}

	report := LiveReport{
		SessionID:   sessionID,
		CourseCode:  code,
		CourseTitle: title,
		Students:    make([]StudentStatus, 0, len(roster)),
	}
	for _, entry := range roster {
		st := StatusAbsent
		if entry.Present {
			st = StatusPresent
			report.PresentCount++
		}
		report.Students = append(report.Students, StudentStatus{
			AccountID: entry.AccountID,
			FullName:  entry.FullName,
			MatricNo:  entry.MatricNo,
			Status:    st,
		})
	}
	report.TotalEnrolled = len(roster)
	return report, nil
}

// CoursePercentage returns the share of an account's records in a course that
// are present, rounded to one decimal. No records means 0. The denominator is
// records that exist, not sessions scheduled: a session the student never
// interacted with does not count against them.
func (s *Service) CoursePercentage(ctx context.Context, accountID, courseID string) (float64, error) {
	tally, err := s.repo.CountRecords(ctx, accountID, courseID)
	if err != nil {
		return 0, err
	}
	return percentage(tally), nil
}

// Overall returns the account's attendance percentage across all courses,
// with the same empty-set and rounding rules as CoursePercentage.
func (s *Service) Overall(ctx context.Context, accountID string) (float64, error) {
	tally, err := s.repo.CountRecords(ctx, accountID, "")
	if err != nil {
		return 0, err
	}
	return percentage(tally), nil
}

func percentage(t Tally) float64 {
	if t.Total == 0 {
		return 0
	}
	return math.Round(float64(t.Present)/float64(t.Total)*1000) / 10
}

// Weekly groups an account's recent records in a course into week buckets.
// It fetches up to maxWeeks*7 raw records first, then groups, then caps the
// buckets at maxWeeks. Weeks with many sessions can therefore crowd out
// older weeks; that windowing is intentional and must not be reordered.
func (s *Service) Weekly(ctx context.Context, accountID, courseID string, maxWeeks int) ([]WeekBucket, error) {
	if maxWeeks <= 0 {
		maxWeeks = 12
	}
	recs, err := s.repo.RecentWithSessions(ctx, accountID, courseID, maxWeeks*7)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[string]*WeekBucket)
	var buckets []*WeekBucket
	for _, rec := range recs {
		start := weekStart(rec.SessionDate)
		key := weekKey(start)
		b, ok := byWeek[key]
		if !ok {
			b = &WeekBucket{Key: key, WeekStart: start}
			byWeek[key] = b
			buckets = append(buckets, b)
		}
		b.Records = append(b.Records, WeekRecord{
			Date:        rec.SessionDate,
			Status:      rec.Status,
			Time:        rec.MarkedAt.Format("15:04"),
			SessionTime: rec.StartTime + " - " + rec.EndTime,
		})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].WeekStart.After(buckets[j].WeekStart)
	})
	if len(buckets) > maxWeeks {
		buckets = buckets[:maxWeeks]
	}
	out := make([]WeekBucket, len(buckets))
	for i, b := range buckets {
		out[i] = *b
	}
	return out, nil
}

// weekStart returns the Monday of the week containing d.
func weekStart(d time.Time) time.Time {
	back := (int(d.Weekday()) + 6) % 7
	return time.Date(d.Year(), d.Month(), d.Day()-back, 0, 0, 0, 0, d.Location())
}

func weekKey(monday time.Time) string {
	year, week := monday.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// History returns an account's records in a course, newest session first.
func (s *Service) History(ctx context.Context, accountID, courseID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.RecentWithSessions(ctx, accountID, courseID, limit)
}

// Recent returns the latest records across all courses, for the admin dashboard.
func (s *Service) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListRecent(ctx, limit)
}

// Get returns a single record by id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.repo.GetRecord(ctx, id)
}

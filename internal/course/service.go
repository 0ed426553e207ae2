package course

import (
	"context"
	"errors"
	"strings"

	"classtrack/internal/metrics"
)

// Repository persists courses and enrollments.
type Repository interface {
	// CreateCourse writes a course; duplicate code → ErrCodeExists,
	// duplicate join code → ErrJoinCodeCollision handling is the caller's.
	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	GetByJoinCode(ctx context.Context, joinCode string) (Course, error)
	UpdateCourse(ctx context.Context, c Course) (Course, error)
	DeleteCourse(ctx context.Context, id string) error
	ListCourses(ctx context.Context) ([]Course, error)
	CountCourses(ctx context.Context) (int, error)
	// CreateEnrollment links an account to a course; a duplicate pair is
	// returned as ErrAlreadyEnrolled, even when it loses a race.
	CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
	DeleteEnrollment(ctx context.Context, accountID, courseID string) error
	ListEnrolledCourses(ctx context.Context, accountID string) ([]Course, error)
}

// Service manages the course catalogue and enrollment.
type Service struct {
	repo Repository
}

// NewService creates a course service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a course with a freshly generated join code. On the unlikely
// join-code collision the code is regenerated and the insert retried.
func (svc *Service) Create(ctx context.Context, c Course) (Course, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	for attempt := 0; attempt < 5; attempt++ {
		code, err := NewJoinCode()
		if err != nil {
			return Course{}, err
		}
		c.JoinCode = code
		created, err := svc.repo.CreateCourse(ctx, c)
		if errors.Is(err, errJoinCodeTaken) {
			continue
		}
		return created, err
	}
	return Course{}, errJoinCodeTaken
}

// errJoinCodeTaken signals a join-code uniqueness collision on insert.
var errJoinCodeTaken = errors.New("join code already in use")

// Get returns one course.
func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

// Update edits course metadata; the join code is never changed here.
func (svc *Service) Update(ctx context.Context, c Course) (Course, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	return svc.repo.UpdateCourse(ctx, c)
}

// Delete removes a course; sessions, enrollments and attendance cascade.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// List returns all courses with enrollment counts.
func (svc *Service) List(ctx context.Context) ([]Course, error) {
	return svc.repo.ListCourses(ctx)
}

// Count returns the course total for the admin dashboard.
func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountCourses(ctx)
}

// Join self-enrolls an account using a course join code.
func (svc *Service) Join(ctx context.Context, accountID, joinCode string) (Enrollment, error) {
	c, err := svc.repo.GetByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(joinCode)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Enrollment{}, ErrInvalidJoinCode
		}
		return Enrollment{}, err
	}
	return svc.Enroll(ctx, accountID, c.ID)
}

// Enroll links an account to a course directly (admin path and Join).
func (svc *Service) Enroll(ctx context.Context, accountID, courseID string) (Enrollment, error) {
	e, err := svc.repo.CreateEnrollment(ctx, Enrollment{AccountID: accountID, CourseID: courseID})
	if err != nil {
		return Enrollment{}, err
	}
	metrics.Enrollments.Inc()
	return e, nil
}

// Unenroll removes the (account, course) link.
func (svc *Service) Unenroll(ctx context.Context, accountID, courseID string) error {
	return svc.repo.DeleteEnrollment(ctx, accountID, courseID)
}

// EnrolledCourses returns the courses an account is enrolled in.
func (svc *Service) EnrolledCourses(ctx context.Context, accountID string) ([]Course, error) {
	return svc.repo.ListEnrolledCourses(ctx, accountID)
}

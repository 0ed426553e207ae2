// Package report feeds the attendance export: filtered record rows and the
// spreadsheet rendering consumed by administrators.
package report

import (
	"context"
	"time"
)

// Filter narrows the exported attendance records. Zero values mean "any".
type Filter struct {
	CourseID  string
	AccountID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    string
}

// Row is one line of the attendance report.
type Row struct {
	SessionDate time.Time `json:"date"`
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
	StudentName string    `json:"student_name"`
	MatricNo    string    `json:"matric_no"`
	Status      string    `json:"status"`
	MarkedAt    time.Time `json:"time_marked"`
}

// Repository answers the filtered record query.
type Repository interface {
	ListRows(ctx context.Context, f Filter) ([]Row, error)
}

// Service builds attendance reports.
type Service struct {
	repo Repository
}

// NewService creates a report service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Rows returns the filtered report rows, newest session first.
func (svc *Service) Rows(ctx context.Context, f Filter) ([]Row, error) {
	return svc.repo.ListRows(ctx, f)
}

// Filename derives the export attachment name from the filter, mirroring
// what the report columns show.
func Filename(f Filter, courseCode string) string {
	name := "attendance_export"
	if courseCode != "" {
		name += "_" + courseCode
	}
	if f.DateFrom != nil || f.DateTo != nil {
		from, to := "start", "end"
		if f.DateFrom != nil {
			from = f.DateFrom.Format("2006-01-02")
		}
		if f.DateTo != nil {
			to = f.DateTo.Format("2006-01-02")
		}
		name += "_" + from + "_to_" + to
	}
	return name + ".xlsx"
}

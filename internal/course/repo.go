package course

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"classtrack/internal/store"
)

// PostgresRepository persists courses and enrollments in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const courseColumns = `
	c.id, c.code, c.title, c.lecturer, c.description, c.join_code, c.created_at,
	(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id)`

func scanCourse(row *sql.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Code, &c.Title, &c.Lecturer, &c.Description, &c.JoinCode, &c.CreatedAt, &c.EnrolledCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

// CreateCourse writes a new course.
func (r *PostgresRepository) CreateCourse(ctx context.Context, c Course) (Course, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO courses (id, code, title, lecturer, description, join_code)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, c.ID, c.Code, c.Title, c.Lecturer, c.Description, c.JoinCode)
	if err := row.Scan(&c.CreatedAt); err != nil {
		switch store.UniqueConstraint(err) {
		case "courses_join_code_key":
			return Course{}, errJoinCodeTaken
		case "courses_code_key":
			return Course{}, ErrCodeExists
		}
		return Course{}, err
	}
	return c, nil
}

// GetCourse returns a course by id with its enrollment count.
func (r *PostgresRepository) GetCourse(ctx context.Context, id string) (Course, error) {
	return scanCourse(r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id))
}

// GetByJoinCode resolves a join code to its course.
func (r *PostgresRepository) GetByJoinCode(ctx context.Context, joinCode string) (Course, error) {
	return scanCourse(r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.join_code = $1`, joinCode))
}

// UpdateCourse edits course metadata.
func (r *PostgresRepository) UpdateCourse(ctx context.Context, c Course) (Course, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE courses SET code = $2, title = $3, lecturer = $4, description = $5
		WHERE id = $1
	`, c.ID, c.Code, c.Title, c.Lecturer, c.Description)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Course{}, ErrCodeExists
		}
		return Course{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Course{}, ErrNotFound
	}
	return r.GetCourse(ctx, c.ID)
}

// DeleteCourse removes a course; dependent rows cascade.
func (r *PostgresRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCourses(rows *sql.Rows) ([]Course, error) {
	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.Lecturer, &c.Description,
			&c.JoinCode, &c.CreatedAt, &c.EnrolledCount); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// ListCourses returns every course with enrollment counts.
func (r *PostgresRepository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses c ORDER BY c.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCourses(rows)
}

// CountCourses returns the number of courses.
func (r *PostgresRepository) CountCourses(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n)
	return n, err
}

// CreateEnrollment links an account to a course. The UNIQUE(account_id,
// course_id) constraint resolves duplicate attempts, racing or not, as
// ErrAlreadyEnrolled.
func (r *PostgresRepository) CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO enrollments (id, account_id, course_id)
		VALUES ($1,$2,$3)
		RETURNING enrolled_at
	`, e.ID, e.AccountID, e.CourseID)
	if err := row.Scan(&e.EnrolledAt); err != nil {
		if store.IsUniqueViolation(err) {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, err
	}
	return e, nil
}

// DeleteEnrollment removes the (account, course) link.
func (r *PostgresRepository) DeleteEnrollment(ctx context.Context, accountID, courseID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE account_id = $1 AND course_id = $2`, accountID, courseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotEnrolled
	}
	return nil
}

// ListEnrolledCourses returns the courses an account is enrolled in.
func (r *PostgresRepository) ListEnrolledCourses(ctx context.Context, accountID string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+courseColumns+`
		FROM courses c
		JOIN enrollments en ON en.course_id = c.id
		WHERE en.account_id = $1
		ORDER BY c.code
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCourses(rows)
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository persists sessions in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InsertSession writes a new session.
func (r *PostgresRepository) InsertSession(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO class_sessions (id, course_id, session_date, start_time, end_time, location, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, s.ID, s.CourseID, s.Date, s.StartTime, s.EndTime, s.Location, s.Status)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// GetSession returns a single session by id.
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_id, session_date, start_time, end_time, location, status, created_at
		FROM class_sessions WHERE id = $1
	`, id)
	var s Session
	if err := row.Scan(&s.ID, &s.CourseID, &s.Date, &s.StartTime, &s.EndTime, &s.Location, &s.Status, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// UpdateSession edits an existing session.
func (r *PostgresRepository) UpdateSession(ctx context.Context, s Session) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE class_sessions
		SET course_id = $2, session_date = $3, start_time = $4, end_time = $5, location = $6, status = $7
		WHERE id = $1
		RETURNING created_at
	`, s.ID, s.CourseID, s.Date, s.StartTime, s.EndTime, s.Location, s.Status)
	if err := row.Scan(&s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// DeleteSession removes a session; dependent attendance records cascade.
func (r *PostgresRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const infoColumns = `
	s.id, s.course_id, s.session_date, s.start_time, s.end_time, s.location, s.status, s.created_at,
	c.code, c.title`

func scanInfos(rows *sql.Rows) ([]Info, error) {
	var res []Info
	for rows.Next() {
		var in Info
		if err := rows.Scan(&in.ID, &in.CourseID, &in.Date, &in.StartTime, &in.EndTime,
			&in.Location, &in.Status, &in.CreatedAt, &in.CourseCode, &in.CourseTitle); err != nil {
			return nil, err
		}
		res = append(res, in)
	}
	return res, rows.Err()
}

// ListSessions returns every session with course info, newest day first.
func (r *PostgresRepository) ListSessions(ctx context.Context) ([]Info, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+infoColumns+`
		FROM class_sessions s JOIN courses c ON c.id = s.course_id
		ORDER BY s.session_date DESC, s.start_time
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInfos(rows)
}

// ListUpcoming returns the next sessions for the account's enrolled courses.
func (r *PostgresRepository) ListUpcoming(ctx context.Context, accountID string, from time.Time, limit int) ([]Info, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+infoColumns+`
		FROM class_sessions s
		JOIN courses c ON c.id = s.course_id
		JOIN enrollments e ON e.course_id = s.course_id AND e.account_id = $1
		WHERE s.session_date >= $2
		ORDER BY s.session_date, s.start_time
		LIMIT $3
	`, accountID, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInfos(rows)
}

// ListOnDate returns all sessions on one calendar day.
func (r *PostgresRepository) ListOnDate(ctx context.Context, date time.Time) ([]Info, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+infoColumns+`
		FROM class_sessions s JOIN courses c ON c.id = s.course_id
		WHERE s.session_date = $1
		ORDER BY s.start_time
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInfos(rows)
}

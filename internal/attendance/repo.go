package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/google/uuid"

	"classtrack/internal/session"
	"classtrack/internal/store"
)

// PostgresRepository persists attendance data in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetSession loads the session a mark targets.
func (r *PostgresRepository) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_id, session_date, start_time, end_time, location, status, created_at
		FROM class_sessions WHERE id = $1
	`, sessionID)
	var s session.Session
	if err := row.Scan(&s.ID, &s.CourseID, &s.Date, &s.StartTime, &s.EndTime, &s.Location, &s.Status, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, ErrSessionNotFound
		}
		return session.Session{}, err
	}
	return s, nil
}

// CourseHeader returns a course's code and title.
func (r *PostgresRepository) CourseHeader(ctx context.Context, courseID string) (string, string, error) {
	var code, title string
	err := r.db.QueryRowContext(ctx, `SELECT code, title FROM courses WHERE id = $1`, courseID).
		Scan(&code, &title)
	return code, title, err
}

// IsEnrolled reports whether the account holds an enrollment in the course.
func (r *PostgresRepository) IsEnrolled(ctx context.Context, accountID, courseID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE account_id = $1 AND course_id = $2)
	`, accountID, courseID).Scan(&exists)
	return exists, err
}

// HasRecord reports whether a record already exists for (account, session).
func (r *PostgresRepository) HasRecord(ctx context.Context, accountID, sessionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM attendance_records WHERE account_id = $1 AND session_id = $2)
	`, accountID, sessionID).Scan(&exists)
	return exists, err
}

// InsertRecord writes a new record. The UNIQUE(account_id, session_id)
// constraint is the last line of defense against a concurrent duplicate; its
// violation surfaces as ErrAlreadyMarked, never as a generic error.
func (r *PostgresRepository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, account_id, course_id, session_id, status, marked_at, marked_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING marked_at
	`, rec.ID, rec.AccountID, rec.CourseID, rec.SessionID, rec.Status, rec.MarkedAt, rec.MarkedBy)
	if err := row.Scan(&rec.MarkedAt); err != nil {
		if store.IsUniqueViolation(err) {
			return Record{}, ErrAlreadyMarked
		}
		return Record{}, err
	}
	return rec, nil
}

// GetRecord returns a single record by id.
func (r *PostgresRepository) GetRecord(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, course_id, session_id, status, marked_at, marked_by
		FROM attendance_records WHERE id = $1
	`, id)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.AccountID, &rec.CourseID, &rec.SessionID, &rec.Status, &rec.MarkedAt, &rec.MarkedBy); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Roster returns every enrolled student and whether a record exists for them
// in the session. Absence is derived by the caller, not stored here.
func (r *PostgresRepository) Roster(ctx context.Context, sessionID, courseID string) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.full_name, a.matric_no,
		       ar.id IS NOT NULL AND ar.status = 'present'
		FROM enrollments e
		JOIN accounts a ON a.id = e.account_id
		LEFT JOIN attendance_records ar ON ar.account_id = e.account_id AND ar.session_id = $1
		WHERE e.course_id = $2
		ORDER BY a.full_name
	`, sessionID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roster []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		if err := rows.Scan(&entry.AccountID, &entry.FullName, &entry.MatricNo, &entry.Present); err != nil {
			return nil, err
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// CountRecords tallies an account's records, optionally scoped to a course.
func (r *PostgresRepository) CountRecords(ctx context.Context, accountID, courseID string) (Tally, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'present')
		FROM attendance_records WHERE account_id = $1`
	args := []any{accountID}
	if courseID != "" {
		query += ` AND course_id = $2`
		args = append(args, courseID)
	}
	var t Tally
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.Total, &t.Present); err != nil {
		return Tally{}, err
	}
	return t, nil
}

const sessionRecordColumns = `
	ar.id, ar.account_id, ar.course_id, ar.session_id, ar.status, ar.marked_at, ar.marked_by,
	s.session_date, s.start_time, s.end_time`

func scanSessionRecords(rows *sql.Rows) ([]SessionRecord, error) {
	var res []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.CourseID, &rec.SessionID, &rec.Status,
			&rec.MarkedAt, &rec.MarkedBy, &rec.SessionDate, &rec.StartTime, &rec.EndTime); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// RecentWithSessions returns an account's records joined with their session,
// ordered by session date descending. courseID == "" means all courses.
func (r *PostgresRepository) RecentWithSessions(ctx context.Context, accountID, courseID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + sessionRecordColumns + `
		FROM attendance_records ar
		JOIN class_sessions s ON s.id = ar.session_id
		WHERE ar.account_id = $1`
	args := []any{accountID}
	if courseID != "" {
		query += ` AND ar.course_id = $2`
		args = append(args, courseID)
	}
	query += ` ORDER BY s.session_date DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionRecords(rows)
}

// ListRecent returns the latest records across all accounts and courses.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionRecordColumns+`
		FROM attendance_records ar
		JOIN class_sessions s ON s.id = ar.session_id
		ORDER BY ar.marked_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionRecords(rows)
}

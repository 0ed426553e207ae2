package report

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// PostgresRepository runs the export query against Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListRows returns report rows matching the filter, newest session first.
func (r *PostgresRepository) ListRows(ctx context.Context, f Filter) ([]Row, error) {
	query := `
		SELECT s.session_date, c.code, c.title, a.full_name, a.matric_no, ar.status, ar.marked_at
		FROM attendance_records ar
		JOIN accounts a ON a.id = ar.account_id
		JOIN courses c ON c.id = ar.course_id
		JOIN class_sessions s ON s.id = ar.session_id`
	args := []any{}
	clauses := []string{}
	if f.CourseID != "" {
		clauses = append(clauses, "ar.course_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.CourseID)
	}
	if f.AccountID != "" {
		clauses = append(clauses, "ar.account_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.AccountID)
	}
	if f.DateFrom != nil {
		clauses = append(clauses, "s.session_date >= $"+strconv.Itoa(len(args)+1))
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		clauses = append(clauses, "s.session_date <= $"+strconv.Itoa(len(args)+1))
		args = append(args, *f.DateTo)
	}
	if f.Status != "" {
		clauses = append(clauses, "ar.status = $"+strconv.Itoa(len(args)+1))
		args = append(args, f.Status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.session_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.SessionDate, &row.CourseCode, &row.CourseTitle,
			&row.StudentName, &row.MatricNo, &row.Status, &row.MarkedAt); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

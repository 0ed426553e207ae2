package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"classtrack/internal/store"
)

// PostgresRepository persists accounts in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, matric_no, full_name, password_hash, role, avatar_url, created_at`

func scanAccount(row *sql.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.MatricNo, &a.FullName, &a.PasswordHash, &a.Role, &a.AvatarURL, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// CreateAccount writes a new account.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a Account) (Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, matric_no, full_name, password_hash, role, avatar_url)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, a.ID, a.MatricNo, a.FullName, a.PasswordHash, a.Role, a.AvatarURL)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if store.IsUniqueViolation(err) {
			return Account{}, ErrMatricExists
		}
		return Account{}, err
	}
	return a, nil
}

// GetAccount returns an account by id.
func (r *PostgresRepository) GetAccount(ctx context.Context, id string) (Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// GetByMatric returns an account by matric number.
func (r *PostgresRepository) GetByMatric(ctx context.Context, matricNo string) (Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE matric_no = $1`, matricNo))
}

// UpdateAccount edits name and matric number.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, a Account) (Account, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET matric_no = $2, full_name = $3 WHERE id = $1
	`, a.ID, a.MatricNo, a.FullName)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Account{}, ErrMatricExists
		}
		return Account{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Account{}, ErrNotFound
	}
	return a, nil
}

// UpdatePassword replaces the stored credential hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAvatar stores the profile picture URL.
func (r *PostgresRepository) SetAvatar(ctx context.Context, id, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET avatar_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account; FK cascades remove dependent rows.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStudents returns student accounts with enrollment counts, optionally
// restricted to one course.
func (r *PostgresRepository) ListStudents(ctx context.Context, courseID string) ([]StudentSummary, error) {
	query := `
		SELECT a.id, a.matric_no, a.full_name, a.password_hash, a.role, a.avatar_url, a.created_at,
		       (SELECT COUNT(*) FROM enrollments e WHERE e.account_id = a.id)
		FROM accounts a
		WHERE a.role = 'student'`
	args := []any{}
	if courseID != "" {
		query += ` AND EXISTS (SELECT 1 FROM enrollments e WHERE e.account_id = a.id AND e.course_id = $1)`
		args = append(args, courseID)
	}
	query += ` ORDER BY a.full_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []StudentSummary
	for rows.Next() {
		var s StudentSummary
		if err := rows.Scan(&s.ID, &s.MatricNo, &s.FullName, &s.PasswordHash, &s.Role,
			&s.AvatarURL, &s.CreatedAt, &s.EnrollmentCount); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// CountStudents returns the number of student accounts.
func (r *PostgresRepository) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE role = 'student'`).Scan(&n)
	return n, err
}

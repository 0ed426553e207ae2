package announcement

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"classtrack/internal/store"
)

// PostgresRepository persists announcements in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes a new announcement.
func (r *PostgresRepository) Insert(ctx context.Context, a Announcement) (Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO announcements (id, title, content, author_id, course_id, priority)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, a.ID, a.Title, a.Content, a.AuthorID, a.CourseID, a.Priority)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Announcement{}, err
	}
	return a, nil
}

// visibleClause restricts rows for students: general announcements plus
// those scoped to a course the account is enrolled in. $1 is the account id.
const visibleClause = `
	(an.course_id IS NULL OR an.course_id IN
		(SELECT e.course_id FROM enrollments e WHERE e.account_id = $1))`

// ListVisible returns announcements with the account's read state joined in.
func (r *PostgresRepository) ListVisible(ctx context.Context, accountID string, admin bool) ([]View, error) {
	query := `
		SELECT an.id, an.title, an.content, an.author_id, an.course_id, an.priority, an.created_at,
		       au.full_name, c.code, rd.id IS NOT NULL
		FROM announcements an
		JOIN accounts au ON au.id = an.author_id
		LEFT JOIN courses c ON c.id = an.course_id
		LEFT JOIN announcement_reads rd ON rd.announcement_id = an.id AND rd.account_id = $1`
	if !admin {
		query += ` WHERE ` + visibleClause
	}
	query += ` ORDER BY an.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var views []View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.Title, &v.Content, &v.AuthorID, &v.CourseID, &v.Priority,
			&v.CreatedAt, &v.AuthorName, &v.CourseCode, &v.IsRead); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// MarkRead records a read mark. ON CONFLICT DO NOTHING makes re-marking
// idempotent at the uniqueness constraint; a missing announcement shows up
// as an FK violation and maps to ErrNotFound.
func (r *PostgresRepository) MarkRead(ctx context.Context, announcementID, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO announcement_reads (id, announcement_id, account_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (announcement_id, account_id) DO NOTHING
	`, uuid.NewString(), announcementID, accountID)
	if store.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

// MarkAllRead inserts read marks for every visible unread announcement.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, accountID string, admin bool) error {
	query := `
		INSERT INTO announcement_reads (id, announcement_id, account_id)
		SELECT gen_random_uuid(), an.id, $1
		FROM announcements an`
	if !admin {
		query += ` WHERE ` + visibleClause
	}
	query += ` ON CONFLICT (announcement_id, account_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, accountID)
	return err
}

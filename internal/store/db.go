package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Pool sizing for the shared Postgres connection. The API, worker and
// migrator all go through this; keep the totals below the server's
// max_connections when running several replicas.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = time.Hour
	pingTimeout     = 5 * time.Second
)

// DB wraps the Postgres pool opened through the pgx stdlib driver.
type DB struct {
	Client *sql.DB
}

// NewDB opens the pool and verifies connectivity. On a failed ping the pool
// is still returned so callers that tolerate a late-starting database can
// keep it and retry.
func NewDB(connString string) (*DB, error) {
	client, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	client.SetMaxOpenConns(maxOpenConns)
	client.SetMaxIdleConns(maxIdleConns)
	client.SetConnMaxLifetime(connMaxLifetime)

	db := &DB{Client: client}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return db, client.PingContext(ctx)
}

// Healthy reports whether the database currently answers a ping.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close releases the pool.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

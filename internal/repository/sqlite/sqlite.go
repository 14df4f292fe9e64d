package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

// tsLayout is fixed width so that lexical order matches chronological order.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text      TEXT    NOT NULL,
	sender    TEXT,
	level     TEXT    NOT NULL,
	timestamp TEXT    NOT NULL,
	resolved  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS messages_timestamp_idx ON messages (timestamp DESC);
`

type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func New(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		observability.GetLogger(ctx).Warn("could not set WAL mode")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func observe(queryType string) func() {
	start := time.Now()
	return func() {
		observability.DbQueryDuration.WithLabelValues("sqlite", queryType).Observe(time.Since(start).Seconds())
	}
}

func (r *Repository) Create(ctx context.Context, rec *domain.Record) error {
	defer observe("create")()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages(text, sender, level, timestamp, resolved) VALUES(?,?,?,?,?)`,
		rec.Text, rec.From, string(rec.Level), rec.Timestamp.UTC().Format(tsLayout), rec.Resolved)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Record, error) {
	defer observe("get")()

	rec, err := scanRecord(r.db.QueryRowContext(ctx,
		`SELECT id, text, sender, level, timestamp, resolved FROM messages WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	return rec, nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Record, error) {
	defer observe("list")()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, sender, level, timestamp, resolved FROM messages ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, rec *domain.Record) error {
	defer observe("update")()

	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET text = ?, sender = ?, level = ?, resolved = ? WHERE id = ?`,
		rec.Text, rec.From, string(rec.Level), rec.Resolved, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	defer observe("delete")()

	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) PingContext(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repository) Close() error { return r.db.Close() }

func requireAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		rec    domain.Record
		sender sql.NullString
		level  string
		ts     string
	)
	if err := s.Scan(&rec.ID, &rec.Text, &sender, &level, &ts, &rec.Resolved); err != nil {
		return nil, err
	}
	t, err := time.Parse(tsLayout, ts)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
	}
	rec.Timestamp = t
	if sender.Valid {
		from := sender.String
		rec.From = &from
	}
	rec.Level = domain.Severity(level)
	return &rec, nil
}

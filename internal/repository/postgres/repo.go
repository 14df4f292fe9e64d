package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

type Repository struct {
	DB *sql.DB
}

type scanner interface {
	Scan(dest ...any) error
}

func observe(queryType string) func() {
	start := time.Now()
	return func() {
		observability.DbQueryDuration.WithLabelValues("postgres", queryType).Observe(time.Since(start).Seconds())
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *Repository) Create(ctx context.Context, rec *domain.Record) error {
	defer observe("create")()

	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO messages (text, sender, level, timestamp, resolved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.Text, rec.From, rec.Level, rec.Timestamp.UTC(), rec.Resolved).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Record, error) {
	defer observe("get")()

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, `
		SELECT id, text, sender, level, timestamp, resolved
		FROM messages WHERE id = $1
	`, id))
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

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, text, sender, level, timestamp, resolved
		FROM messages
		ORDER BY timestamp DESC, id DESC
	`)
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

	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET text = $2, sender = $3, level = $4, resolved = $5
		WHERE id = $1
	`, rec.ID, rec.Text, rec.From, rec.Level, rec.Resolved)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	defer observe("delete")()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) PingContext(ctx context.Context) error { return r.DB.PingContext(ctx) }

func (r *Repository) Close() error { return r.DB.Close() }

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

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		rec    domain.Record
		sender sql.NullString
		level  string
	)
	if err := s.Scan(&rec.ID, &rec.Text, &sender, &level, &rec.Timestamp, &rec.Resolved); err != nil {
		return nil, err
	}
	if sender.Valid {
		from := sender.String
		rec.From = &from
	}
	rec.Level = domain.Severity(level)
	return &rec, nil
}

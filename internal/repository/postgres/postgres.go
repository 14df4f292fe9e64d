package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

func NewDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return db, db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         BIGSERIAL PRIMARY KEY,
	text       TEXT        NOT NULL,
	sender     TEXT,
	level      TEXT        NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL,
	resolved   BOOLEAN     NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS messages_timestamp_idx ON messages (timestamp DESC);
`

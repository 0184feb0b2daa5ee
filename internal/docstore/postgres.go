package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, key)
)`

// Postgres stores every document as a JSONB row keyed by (collection, key).
type Postgres struct {
	pool        *pgxpool.Pool
	maxAttempts int
}

func NewPostgres(pool *pgxpool.Pool, maxAttempts int) *Postgres {
	return &Postgres{pool: pool, maxAttempts: maxAttempts}
}

// EnsureSchema creates the documents table if it is missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *Postgres) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	return pgGet(ctx, p.pool, collection, key, false)
}

func (p *Postgres) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	return pgSet(ctx, p.pool, collection, key, fields, opts)
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.pool.Query(ctx, `SELECT key, data FROM documents WHERE collection=$1 ORDER BY key`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		f, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{Key: key, Fields: f})
	}
	return out, rows.Err()
}

func (p *Postgres) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return retryTx(ctx, p.maxAttempts, pgRetryable, func() error {
		tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(ctx, &postgresTx{tx: tx}); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

// Get locks the document for the rest of the transaction. The advisory lock also covers
// documents that do not exist yet, which row locks cannot.
func (t *postgresTx) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, collection+"/"+key); err != nil {
		return Document{}, false, fmt.Errorf("lock %s/%s: %w", collection, key, err)
	}
	return pgGet(ctx, t.tx, collection, key, true)
}

func (t *postgresTx) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	return pgSet(ctx, t.tx, collection, key, fields, opts)
}

func pgGet(ctx context.Context, q pgQuerier, collection, key string, forUpdate bool) (Document, bool, error) {
	sql := `SELECT data FROM documents WHERE collection=$1 AND key=$2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	var raw []byte
	err := q.QueryRow(ctx, sql, collection, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	f, err := decodeFields(raw)
	if err != nil {
		return Document{}, false, err
	}
	return Document{Key: key, Fields: f}, true, nil
}

func pgSet(ctx context.Context, q pgQuerier, collection, key string, fields Fields, opts SetOptions) error {
	b, err := encodeFields(fields)
	if err != nil {
		return err
	}
	update := `EXCLUDED.data`
	if opts.Merge {
		update = `documents.data || EXCLUDED.data`
	}
	_, err = q.Exec(ctx, `
		INSERT INTO documents (collection, key, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (collection, key) DO UPDATE SET data = `+update+`, updated_at = now()
	`, collection, key, string(b))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

// pgRetryable reports serialization failures, deadlocks and unique violations from two
// writers creating the same document.
func pgRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

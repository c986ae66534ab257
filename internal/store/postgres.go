package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores records as JSONB rows in panel_records.
type Postgres struct {
	db DBTX
}

func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

const migration = `
CREATE TABLE IF NOT EXISTS panel_records (
	id          UUID PRIMARY KEY,
	seq         BIGSERIAL NOT NULL,
	collection  TEXT NOT NULL,
	data        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS panel_records_collection_seq ON panel_records (collection, seq);
`

// Migrate creates the table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, migration); err != nil {
		return fmt.Errorf("migrate panel_records: %w", err)
	}
	return nil
}

// Connect opens a pool and runs the migration.
func Connect(ctx context.Context, dsn string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := NewPostgres(pool).Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx,
		`SELECT id, collection, data, created_at FROM panel_records WHERE collection = $1 ORDER BY seq`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return recs, nil
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return Record{}, err
	}
	pgID, ok := toPgUUID(id)
	if !ok {
		return Record{}, ErrNotFound
	}

	row := p.db.QueryRow(ctx,
		`SELECT id, collection, data, created_at FROM panel_records WHERE collection = $1 AND id = $2`,
		collection, pgID)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (p *Postgres) Create(ctx context.Context, collection string, data map[string]any) (Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return Record{}, err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}

	id, _ := toPgUUID(uuid.NewString())
	row := p.db.QueryRow(ctx,
		`INSERT INTO panel_records (id, collection, data) VALUES ($1, $2, $3)
		 RETURNING id, collection, data, created_at`,
		id, collection, body)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", collection, err)
	}
	return rec, nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	pgID, ok := toPgUUID(id)
	if !ok {
		return ErrNotFound
	}

	tag, err := p.db.Exec(ctx, `DELETE FROM panel_records WHERE collection = $1 AND id = $2`, collection, pgID)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		id         pgtype.UUID
		collection string
		data       []byte
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &collection, &data, &createdAt); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         uuidToString(id),
		Collection: collection,
		CreatedAt:  createdAt.Time.UTC(),
	}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return Record{}, fmt.Errorf("decode record data: %w", err)
	}
	return rec, nil
}

func toPgUUID(s string) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

package vectorindex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgVectorIndex keeps chunk vectors in a Postgres table with the pgvector
// extension, for deployments that would rather not depend on a hosted index.
// The pool is created lazily on first use, like the Pinecone host resolution.
type PgVectorIndex struct {
	dsn string
	dim int

	connectOnce sync.Once
	pool        *pgxpool.Pool
	connectErr  error
}

func NewPgVectorIndex(dsn string, dim int) *PgVectorIndex {
	if dim <= 0 {
		dim = 1024
	}
	return &PgVectorIndex{dsn: dsn, dim: dim}
}

func (x *PgVectorIndex) connect(ctx context.Context) (*pgxpool.Pool, error) {
	x.connectOnce.Do(func() {
		cfg, err := pgxpool.ParseConfig(x.dsn)
		if err != nil {
			x.connectErr = fmt.Errorf("parse postgres config: %w", err)
			return
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			x.connectErr = fmt.Errorf("connect postgres: %w", err)
			return
		}
		if err := ensureSchema(ctx, pool, x.dim); err != nil {
			pool.Close()
			x.connectErr = err
			return
		}
		x.pool = pool
	})
	return x.pool, x.connectErr
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool, dim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pdf_chunks (
	id text PRIMARY KEY,
	owner_id text NOT NULL,
	document_id text NOT NULL,
	document_name text NOT NULL DEFAULT '',
	chunk_index int NOT NULL,
	text text NOT NULL,
	embedding vector(%d),
	created_at text NOT NULL DEFAULT ''
)`, dim),
		`CREATE INDEX IF NOT EXISTS pdf_chunks_owner_idx ON pdf_chunks (owner_id, document_id)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure pdf_chunks schema: %w", err)
		}
	}
	return nil
}

func (x *PgVectorIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	pool, err := x.connect(ctx)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert chunks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, rec := range records {
		_, err := tx.Exec(ctx, `
INSERT INTO pdf_chunks (id, owner_id, document_id, document_name, chunk_index, text, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7::vector, $8)
ON CONFLICT (id)
DO UPDATE SET
  document_name = EXCLUDED.document_name,
  text = EXCLUDED.text,
  embedding = EXCLUDED.embedding,
  created_at = EXCLUDED.created_at`,
			rec.ID, rec.Metadata.OwnerID, rec.Metadata.DocumentID, rec.Metadata.DocumentName,
			rec.Metadata.ChunkIndex, rec.Metadata.Text, ToLiteral(rec.Values), rec.Metadata.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

func (x *PgVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if filter.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if topK <= 0 {
		topK = 3
	}
	pool, err := x.connect(ctx)
	if err != nil {
		return nil, err
	}

	args := []any{ToLiteral(vector), filter.OwnerID, topK}
	filterSQL := ""
	if filter.DocumentID != "" {
		filterSQL = " AND document_id = $4"
		args = append(args, filter.DocumentID)
	}
	rows, err := pool.Query(ctx, `
SELECT id, owner_id, document_id, document_name, chunk_index, text, created_at,
       1 - (embedding <=> $1::vector) AS score
FROM pdf_chunks
WHERE owner_id = $2
  AND embedding IS NOT NULL`+filterSQL+`
ORDER BY embedding <=> $1::vector
LIMIT $3`, args...)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, topK)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Metadata.OwnerID, &m.Metadata.DocumentID, &m.Metadata.DocumentName,
			&m.Metadata.ChunkIndex, &m.Metadata.Text, &m.Metadata.Timestamp, &m.Score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return matches, nil
}

func (x *PgVectorIndex) DeleteByFilter(ctx context.Context, filter Filter) error {
	if filter.OwnerID == "" {
		return ErrOwnerRequired
	}
	pool, err := x.connect(ctx)
	if err != nil {
		return err
	}
	if filter.DocumentID != "" {
		_, err = pool.Exec(ctx, `DELETE FROM pdf_chunks WHERE owner_id = $1 AND document_id = $2`, filter.OwnerID, filter.DocumentID)
	} else {
		_, err = pool.Exec(ctx, `DELETE FROM pdf_chunks WHERE owner_id = $1`, filter.OwnerID)
	}
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// ToLiteral renders a vector in pgvector's input syntax.
func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

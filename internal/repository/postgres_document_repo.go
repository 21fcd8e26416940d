package repository

import (
	"bigbrain/internal/store"
	"context"
	"database/sql"
	"fmt"
)

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS documents (
		key VARCHAR(64) PRIMARY KEY,
		data JSONB NOT NULL DEFAULT '{}',
		revision BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

type postgresDocumentRepo struct {
	db *sql.DB
}

// NewPostgresDocumentStore creates a store.Store over the documents table
func NewPostgresDocumentStore(db *sql.DB) store.Store {
	return &postgresDocumentRepo{db: db}
}

// InitSchema creates the documents table if needed
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (r *postgresDocumentRepo) Load(ctx context.Context, key string) (store.Document, error) {
	var doc store.Document
	err := r.db.QueryRowContext(ctx,
		`SELECT data, revision FROM documents WHERE key = $1`, key,
	).Scan(&doc.Data, &doc.Revision)
	if err == sql.ErrNoRows {
		return store.Document{}, nil
	}
	if err != nil {
		return store.Document{}, err
	}
	return doc, nil
}

func (r *postgresDocumentRepo) Save(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	var result sql.Result
	var err error
	if expected == 0 {
		result, err = r.db.ExecContext(ctx,
			`INSERT INTO documents (key, data, revision) VALUES ($1, $2, 1) ON CONFLICT (key) DO NOTHING`,
			key, string(data),
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE documents SET data = $2, revision = revision + 1, updated_at = CURRENT_TIMESTAMP
			 WHERE key = $1 AND revision = $3`,
			key, string(data), expected,
		)
	}
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, store.ErrConflict
	}
	return expected + 1, nil
}

func (r *postgresDocumentRepo) Close() error {
	return r.db.Close()
}

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const documentColumns = `id, template, color_scheme, candidate_name, source_hash, latex, compiled, page_count, created_at`

// SaveDocument records a generated document and returns it with its ID.
func (db *DB) SaveDocument(ctx context.Context, input *DocumentCreateInput) (*Document, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO resume_documents (template, color_scheme, candidate_name, source_hash, latex)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+documentColumns,
		input.Template, input.ColorScheme, input.CandidateName, input.SourceHash, input.LaTeX,
	)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return doc, nil
}

// MarkCompiled records a successful PDF compilation. pageCount of zero is
// stored as unknown.
func (db *DB) MarkCompiled(ctx context.Context, id uuid.UUID, pageCount int) error {
	var pages *int
	if pageCount > 0 {
		pages = &pageCount
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE resume_documents SET compiled = TRUE, page_count = $2 WHERE id = $1`,
		id, pages,
	)
	if err != nil {
		return fmt.Errorf("failed to mark document compiled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDocument returns a document by ID, or ErrNotFound.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM resume_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns the most recent documents, newest first.
func (db *DB) ListDocuments(ctx context.Context, limit int) ([]Document, error) {
	limit = ClampLimit(limit)
	rows, err := db.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM resume_documents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Template, &d.ColorScheme, &d.CandidateName, &d.SourceHash,
		&d.LaTeX, &d.Compiled, &d.PageCount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

//go:build integration

package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	_, _ = db.pool.Exec(ctx, "DELETE FROM resume_documents WHERE candidate_name LIKE 'Integration %'")
	return db
}

func TestIntegration_Document_Lifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	doc, err := db.SaveDocument(ctx, &DocumentCreateInput{
		Template:      "professional",
		ColorScheme:   "blue",
		CandidateName: "Integration Jane",
		SourceHash:    "abc123",
		LaTeX:         "\\documentclass{article}",
	})
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if doc.ID == uuid.Nil {
		t.Fatal("document ID should be set")
	}
	if doc.Compiled || doc.PageCount != nil {
		t.Error("new document should not be compiled")
	}

	if err := db.MarkCompiled(ctx, doc.ID, 2); err != nil {
		t.Fatalf("MarkCompiled failed: %v", err)
	}

	got, err := db.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if !got.Compiled || got.PageCount == nil || *got.PageCount != 2 {
		t.Errorf("compiled=%v pages=%v, want true/2", got.Compiled, got.PageCount)
	}
	if got.LaTeX != "\\documentclass{article}" {
		t.Errorf("LaTeX = %q", got.LaTeX)
	}

	docs, err := db.ListDocuments(ctx, 5)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) == 0 || docs[0].ID != doc.ID {
		t.Error("newest document should be listed first")
	}
}

func TestIntegration_Document_NotFound(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := db.GetDocument(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument err = %v, want ErrNotFound", err)
	}
	if err := db.MarkCompiled(ctx, uuid.New(), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkCompiled err = %v, want ErrNotFound", err)
	}
}

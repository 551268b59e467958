package db

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS resume_documents")
	for _, col := range strings.Split(documentColumns, ", ") {
		assert.Contains(t, schemaSQL, col, "schema should define column %s", col)
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxListLimit, ClampLimit(5000))
}

func TestDocument_JSONOmitsSource(t *testing.T) {
	pages := 1
	doc := Document{
		ID:            uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Template:      "modern",
		CandidateName: "Jane Doe",
		LaTeX:         "\\documentclass{article}",
		Compiled:      true,
		PageCount:     &pages,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	jsonBytes, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.Contains(t, string(jsonBytes), `"id":"550e8400-e29b-41d4-a716-446655440000"`)
	assert.Contains(t, string(jsonBytes), `"candidate_name":"Jane Doe"`)
	assert.Contains(t, string(jsonBytes), `"page_count":1`)
	assert.NotContains(t, string(jsonBytes), "documentclass")
}

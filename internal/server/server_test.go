package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talentsync/internal/compiler"
	"github.com/jonathan/talentsync/internal/config"
	"github.com/jonathan/talentsync/internal/db"
	"github.com/jonathan/talentsync/internal/logging"
	"github.com/jonathan/talentsync/internal/observability"
	"github.com/jonathan/talentsync/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"resumeData": {
		"name": "Jane Doe",
		"email": "jane@x.com",
		"contact": "555-0100",
		"education": [{"education_detail": "B.S. Computer Science"}]
	},
	"template": "modern",
	"options": {"colorScheme": "blue"}
}`

// mockStore is an in-memory DocumentStore.
type mockStore struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]*db.Document
	compiled map[uuid.UUID]int
	saveErr  error
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[uuid.UUID]*db.Document), compiled: make(map[uuid.UUID]int)}
}

func (m *mockStore) SaveDocument(_ context.Context, in *db.DocumentCreateInput) (*db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	doc := &db.Document{
		ID:            uuid.New(),
		Template:      in.Template,
		ColorScheme:   in.ColorScheme,
		CandidateName: in.CandidateName,
		SourceHash:    in.SourceHash,
		LaTeX:         in.LaTeX,
		CreatedAt:     time.Now(),
	}
	m.docs[doc.ID] = doc
	return doc, nil
}

func (m *mockStore) MarkCompiled(_ context.Context, id uuid.UUID, pages int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return db.ErrNotFound
	}
	doc.Compiled = true
	m.compiled[id] = pages
	return nil
}

func (m *mockStore) GetDocument(_ context.Context, id uuid.UUID) (*db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return doc, nil
}

func (m *mockStore) ListDocuments(_ context.Context, limit int) ([]db.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, *d)
	}
	if limit := db.ClampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockStore) only(t *testing.T) *db.Document {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.docs, 1)
	for _, d := range m.docs {
		return d
	}
	return nil
}

// stubCompiler returns a fixed result or error and records the source.
type stubCompiler struct {
	res    *compiler.Result
	err    error
	source string
}

func (c *stubCompiler) Compile(_ context.Context, source string) (*compiler.Result, error) {
	c.source = source
	return c.res, c.err
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.RateLimit == nil {
		opts.RateLimit = &ratelimit.Config{Enabled: false}
	}
	if opts.Config.AllowedOrigins == nil {
		opts.Config.AllowedOrigins = []string{"*"}
	}
	s := New(opts)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeJSON[map[string]string](t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestTemplatesEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodGet, "/api/templates", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[[]map[string]string](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "professional", got[0]["id"])
	assert.Equal(t, "Modern", got[1]["name"])
}

func TestGenerateLatex(t *testing.T) {
	store := newMockStore()
	s := newTestServer(t, Options{Store: store})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/x-tex; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe_resume.tex"`, rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\\documentclass[11pt,letterpaper]{article}"))
	assert.Contains(t, body, "\\item{} B.S. Computer Science")

	doc := store.only(t)
	assert.Equal(t, doc.ID.String(), rec.Header().Get("X-Document-ID"))
	assert.Equal(t, "modern", doc.Template)
	assert.Equal(t, "blue", doc.ColorScheme)
	assert.Equal(t, "Jane Doe", doc.CandidateName)
	assert.Equal(t, body, doc.LaTeX)
	assert.Len(t, doc.SourceHash, 64)
}

func TestGenerateLatex_WithoutStore(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Document-ID"))
}

func TestGenerateLatex_StoreFailureDoesNotFailRequest(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("connection refused")
	s := newTestServer(t, Options{Store: store})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Document-ID"))
}

func TestGenerateLatex_UnknownTemplateAccepted(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/api/resume/latex",
		`{"resumeData":{"name":"A","email":"a@b.co"},"template":"fancy","options":{"colorScheme":"purple"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\\sectionheader")
}

func TestGenerateLatex_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "malformed json", body: `{"resumeData":`, wantField: "(root)"},
		{name: "missing resumeData", body: `{}`, wantField: "(root)"},
		{name: "empty name", body: `{"resumeData":{"name":"","email":"a@b.co"}}`, wantField: "resumeData.name"},
		{name: "bad email", body: `{"resumeData":{"name":"A","email":"nope"}}`, wantField: "resumeData.email"},
		{name: "font too large", body: `{"resumeData":{"name":"A","email":"a@b.co"},"options":{"fontSize":14}}`, wantField: "options.fontSize"},
		{name: "margin too large", body: `{"resumeData":{"name":"A","email":"a@b.co"},"options":{"margins":{"left":4}}}`, wantField: "options.margins.left"},
	}

	s := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/resume/latex", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decodeJSON[map[string]string](t, rec)
			assert.Equal(t, tt.wantField, resp["field"])
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestGenerateLatex_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, Options{Config: config.ServerConfig{MaxBodyBytes: 64}})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", decodeJSON[map[string]string](t, rec)["error"])
}

func TestGeneratePDF_Success(t *testing.T) {
	store := newMockStore()
	comp := &stubCompiler{res: &compiler.Result{PDF: []byte("%PDF-1.5 fake"), Pages: 1}}
	s := newTestServer(t, Options{Store: store, Compiler: comp})

	rec := do(s, http.MethodPost, "/api/resume/pdf", validBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe_resume.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-PDF-Pages"))
	assert.Empty(t, rec.Header().Get("X-PDF-Cached"))
	assert.Equal(t, "%PDF-1.5 fake", rec.Body.String())

	doc := store.only(t)
	assert.Equal(t, doc.LaTeX, comp.source)
	assert.True(t, doc.Compiled)
	assert.Equal(t, 1, store.compiled[doc.ID])
}

func TestGeneratePDF_CachedUnknownPages(t *testing.T) {
	comp := &stubCompiler{res: &compiler.Result{PDF: []byte("%PDF"), Cached: true}}
	s := newTestServer(t, Options{Compiler: comp})

	rec := do(s, http.MethodPost, "/api/resume/pdf", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-PDF-Pages"))
	assert.Equal(t, "true", rec.Header().Get("X-PDF-Cached"))
}

func TestGeneratePDF_Fallback(t *testing.T) {
	tests := []struct {
		name        string
		compiler    *stubCompiler
		wantMessage string
		wantLog     string
	}{
		{
			name: "compilation error",
			compiler: &stubCompiler{err: &compiler.CompilationError{
				Message:   "pdflatex exited with status 1",
				LogOutput: "! Undefined control sequence.",
			}},
			wantMessage: "LaTeX compilation failed",
			wantLog:     "! Undefined control sequence.",
		},
		{
			name: "toolchain missing",
			compiler: &stubCompiler{err: &compiler.CompilationError{
				Message: "pdflatex not found",
				Cause:   compiler.ErrToolchainUnavailable,
			}},
			wantMessage: "not installed",
		},
		{
			name:        "circuit open",
			compiler:    &stubCompiler{err: compiler.ErrCircuitOpen},
			wantMessage: "temporarily unavailable",
		},
		{
			name: "timeout",
			compiler: &stubCompiler{err: &compiler.CompilationError{
				Message: "compilation timed out",
				Cause:   context.DeadlineExceeded,
			}},
			wantMessage: "timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			s := newTestServer(t, Options{Store: store, Compiler: tt.compiler})

			rec := do(s, http.MethodPost, "/api/resume/pdf", validBody)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			resp := decodeJSON[FallbackResponse](t, rec)
			assert.True(t, resp.Fallback)
			assert.Contains(t, resp.Message, tt.wantMessage)
			assert.Equal(t, tt.wantLog, resp.Log)
			assert.NotEmpty(t, resp.Instructions)
			assert.Contains(t, resp.LaTeX, "\\end{document}")

			doc := store.only(t)
			assert.Equal(t, doc.ID.String(), resp.DocumentID)
			assert.False(t, doc.Compiled)
		})
	}
}

func TestGeneratePDF_NoCompiler(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/api/resume/pdf", validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[FallbackResponse](t, rec)
	assert.True(t, resp.Fallback)
	assert.Contains(t, resp.LaTeX, "Jane Doe")
}

func TestGeneratePDF_InvalidRequestIsNotFallback(t *testing.T) {
	comp := &stubCompiler{}
	s := newTestServer(t, Options{Compiler: comp})

	rec := do(s, http.MethodPost, "/api/resume/pdf", `{"resumeData":{"email":"a@b.co"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, comp.source)
}

func TestDocumentEndpoints(t *testing.T) {
	store := newMockStore()
	s := newTestServer(t, Options{Store: store, Config: config.ServerConfig{DocumentHistory: true}})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get("X-Document-ID")
	latex := rec.Body.String()

	t.Run("metadata", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/documents/"+id, "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, id, got["id"])
		assert.Equal(t, "modern", got["template"])
		assert.NotContains(t, got, "latex")
	})

	t.Run("tex", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/documents/"+id+"/resume.tex", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, latex, rec.Body.String())
	})

	t.Run("list", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/documents?limit=5", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeJSON[[]map[string]any](t, rec), 1)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/documents?limit=ten", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/documents/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/api/documents/not-a-uuid/resume.tex", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDocumentEndpoints_Disabled(t *testing.T) {
	store := newMockStore()
	s := newTestServer(t, Options{Store: store})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get("X-Document-ID")
	require.NotEmpty(t, id)

	for _, path := range []string{"/api/documents", "/api/documents/" + id, "/api/documents/" + id + "/resume.tex"} {
		rec := do(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "Jane", path)
	}
}

func TestDocumentEndpoints_WithoutStore(t *testing.T) {
	s := newTestServer(t, Options{Config: config.ServerConfig{DocumentHistory: true}})

	for _, path := range []string{"/api/documents", "/api/documents/" + uuid.NewString()} {
		rec := do(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		s := newTestServer(t, Options{})
		rec := do(s, http.MethodGet, "/health", "")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin", func(t *testing.T) {
		s := newTestServer(t, Options{Config: config.ServerConfig{AllowedOrigins: []string{"https://app.example.com"}}})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req.Header.Set("Origin", "https://evil.example.com")
		rec = httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		s := newTestServer(t, Options{})
		rec := do(s, http.MethodOptions, "/api/resume/pdf", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Document-ID")
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/api/resume/latex", Method: "POST", Limit: 1, Window: time.Hour}},
	}})

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(s, http.MethodPost, "/api/resume/latex", validBody)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeJSON[map[string]any](t, rec)["error"])

	rec = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_CORS(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/api/resume/latex", Method: "POST", Limit: 1, Window: time.Hour}},
	}})

	for i := 0; i < 3; i++ {
		rec := do(s, http.MethodOptions, "/api/resume/latex", "")
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/resume/latex", validBody).Code)

	rec := do(s, http.MethodPost, "/api/resume/latex", validBody)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{Metrics: observability.NewMetrics()})

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/resume/latex", validBody).Code)
	do(s, http.MethodGet, "/nope", "")

	rec := do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `route="POST /api/resume/latex"`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.Contains(t, body, `talentsync_latex_documents_generated_total{template="modern"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	s := newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/metrics", "").Code)
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/talentsync/internal/cache"
	"github.com/jonathan/talentsync/internal/compiler"
	"github.com/jonathan/talentsync/internal/db"
	"github.com/jonathan/talentsync/internal/logging"
	"github.com/jonathan/talentsync/internal/rendering"
	"github.com/jonathan/talentsync/internal/schemas"
	"github.com/jonathan/talentsync/internal/types"
)

// FallbackResponse is returned instead of a PDF when compilation is not
// possible. The client can compile the LaTeX source elsewhere.
type FallbackResponse struct {
	Fallback     bool     `json:"fallback"`
	Message      string   `json:"message"`
	LaTeX        string   `json:"latex"`
	Instructions []string `json:"instructions"`
	Log          string   `json:"log,omitempty"`
	DocumentID   string   `json:"documentId,omitempty"`
}

var fallbackInstructions = []string{
	"Download or copy the LaTeX source below.",
	"Open an online LaTeX editor such as Overleaf (https://www.overleaf.com) and create a blank project.",
	"Replace main.tex with the source and compile it with pdfLaTeX.",
	"Download the compiled PDF.",
}

// maxFallbackLogBytes bounds the toolchain log echoed back to clients.
const maxFallbackLogBytes = 4096

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTemplates lists the available templates.
func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, rendering.ListTemplates())
}

// handleGenerateLatex renders the request and returns the .tex source as an attachment.
func (s *Server) handleGenerateLatex(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	latex := s.generate(req)
	doc := s.saveDocument(r, req, latex)

	if doc != nil {
		w.Header().Set("X-Document-ID", doc.ID.String())
	}
	w.Header().Set("Content-Type", "application/x-tex; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachmentName(req.ResumeData.Name, "tex")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, latex)
}

// handleGeneratePDF renders and compiles the request. Compilation failures
// produce a 200 fallback carrying the LaTeX source instead of an error status.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	logger := logging.FromContext(r.Context())
	latex := s.generate(req)
	doc := s.saveDocument(r, req, latex)

	if s.compiler == nil {
		s.fallbackResponse(w, doc, latex, "PDF compilation is not available on this server.", "")
		return
	}

	res, err := s.compiler.Compile(r.Context(), latex)
	if err != nil {
		logger.Warn("pdf compilation failed, returning latex fallback", "err", err)
		var cerr *compiler.CompilationError
		logOutput := ""
		if errors.As(err, &cerr) {
			logOutput = cerr.LogOutput
		}
		s.fallbackResponse(w, doc, latex, fallbackMessage(err), logOutput)
		return
	}

	if doc != nil {
		if err := s.store.MarkCompiled(r.Context(), doc.ID, res.Pages); err != nil {
			logger.Warn("failed to mark document compiled", "id", doc.ID, "err", err)
		}
		w.Header().Set("X-Document-ID", doc.ID.String())
	}
	if res.Pages > 0 {
		w.Header().Set("X-PDF-Pages", strconv.Itoa(res.Pages))
	}
	if res.Cached {
		w.Header().Set("X-PDF-Cached", "true")
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachmentName(req.ResumeData.Name, "pdf")+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PDF)
}

// handleListDocuments returns recent generations, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}

	limit := db.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be an integer"})
			return
		}
		limit = n
	}

	docs, err := s.store.ListDocuments(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if docs == nil {
		docs = []db.Document{}
	}
	s.jsonResponse(w, http.StatusOK, docs)
}

// handleGetDocument returns stored generation metadata.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleDocumentTex returns the stored LaTeX source as plain text.
func (s *Server) handleDocumentTex(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookupDocument(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=resume.tex")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc.LaTeX)
}

func (s *Server) lookupDocument(w http.ResponseWriter, r *http.Request) (*db.Document, bool) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "invalid document ID format"})
		return nil, false
	}
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return doc, true
}

// decodeRequest reads the body, checks it against the request schema and
// then applies the struct validation rules.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*types.PDFGenerationRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidatePDFRequest(body); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) && len(verr.Errors) > 0 {
			return nil, &ErrValidation{Field: verr.Errors[0].Field, Message: verr.Errors[0].Message}
		}
		return nil, err
	}

	var req types.PDFGenerationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &ErrValidation{Field: "(root)", Message: "invalid request body: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ErrValidation{Field: verrs[0].Namespace(), Message: "failed on the '" + verrs[0].Tag() + "' rule"}
		}
		return nil, &ErrValidation{Field: "(root)", Message: err.Error()}
	}
	return &req, nil
}

func (s *Server) generate(req *types.PDFGenerationRequest) string {
	latex := s.generator.Generate(req)
	s.metrics.ObserveGeneration(rendering.SelectTemplate(req.Template).ID)
	return latex
}

// saveDocument records the generation when a store is configured. Failures
// are logged and do not fail the request.
func (s *Server) saveDocument(r *http.Request, req *types.PDFGenerationRequest, latex string) *db.Document {
	if s.store == nil {
		return nil
	}
	colorScheme := ""
	if req.Options != nil {
		colorScheme = req.Options.ColorScheme
	}
	doc, err := s.store.SaveDocument(r.Context(), &db.DocumentCreateInput{
		Template:      rendering.SelectTemplate(req.Template).ID,
		ColorScheme:   colorScheme,
		CandidateName: req.ResumeData.Name,
		SourceHash:    cache.Hash([]byte(latex)),
		LaTeX:         latex,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to save document", "err", err)
		return nil
	}
	return doc
}

func (s *Server) fallbackResponse(w http.ResponseWriter, doc *db.Document, latex, message, logOutput string) {
	resp := FallbackResponse{
		Fallback:     true,
		Message:      message,
		LaTeX:        latex,
		Instructions: fallbackInstructions,
		Log:          truncateLog(logOutput, maxFallbackLogBytes),
	}
	if doc != nil {
		resp.DocumentID = doc.ID.String()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func fallbackMessage(err error) string {
	switch {
	case errors.Is(err, compiler.ErrToolchainUnavailable):
		return "LaTeX is not installed on the server. Compile the source yourself to get a PDF."
	case errors.Is(err, compiler.ErrCircuitOpen):
		return "PDF compilation is temporarily unavailable. Compile the source yourself or try again later."
	case compiler.IsInfrastructure(err):
		return "PDF compilation timed out. Compile the source yourself to get a PDF."
	default:
		return "LaTeX compilation failed. The source is included so you can compile it yourself."
	}
}

// truncateLog keeps the last n bytes, where LaTeX reports the fatal error.
func truncateLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// attachmentName builds a download filename from the candidate name.
func attachmentName(name, ext string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) || r == '-':
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '_':
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "_") {
				sb.WriteByte('_')
			}
		}
	}
	base := strings.TrimSuffix(sb.String(), "_")
	if base == "" {
		return "resume." + ext
	}
	return base + "_resume." + ext
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", "err", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status with HTTPStatus. Internal errors are not echoed.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	var verr *ErrValidation
	switch {
	case errors.As(err, &verr):
		s.jsonResponse(w, status, map[string]string{"error": verr.Message, "field": verr.Field})
		return
	case status == http.StatusRequestEntityTooLarge:
		message = "request body too large"
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", "err", err)
		message = "internal server error"
	}
	s.errorResponse(w, status, message)
}

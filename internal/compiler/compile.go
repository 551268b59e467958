// Package compiler turns LaTeX source into PDF using a local TeX toolchain.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonathan/talentsync/internal/observability"
)

const (
	// DefaultEngine is the LaTeX binary used when none is configured.
	DefaultEngine = "pdflatex"

	// CompilationTimeout is the maximum time to wait for LaTeX compilation
	CompilationTimeout = 30 * time.Second

	texFileName = "resume.tex"
	pdfFileName = "resume.pdf"
)

// Result is a successfully compiled document.
type Result struct {
	PDF []byte
	// Pages is zero when no page counting tool was available.
	Pages int
	Log   string
	// Cached is set when the PDF came from the cache instead of the engine.
	Cached bool
}

// PDFCompiler compiles LaTeX source. Implementations are safe for concurrent use.
type PDFCompiler interface {
	Compile(ctx context.Context, source string) (*Result, error)
}

// Options configures a Compiler. Zero values select the defaults.
type Options struct {
	Engine  string
	Timeout time.Duration
	Logger  *log.Logger
	Metrics *observability.Metrics
}

// Compiler runs the LaTeX engine in a private temporary directory per call.
type Compiler struct {
	engine     string
	timeout    time.Duration
	logger     *log.Logger
	metrics    *observability.Metrics
	countPages func(ctx context.Context, pdfPath string) (int, error)
}

// New returns a Compiler for opts.
func New(opts Options) *Compiler {
	c := &Compiler{
		engine:     opts.Engine,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		countPages: CountPDFPages,
	}
	if c.engine == "" {
		c.engine = DefaultEngine
	}
	if c.timeout <= 0 {
		c.timeout = CompilationTimeout
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Available reports whether the engine binary is on PATH.
func (c *Compiler) Available() bool {
	_, err := exec.LookPath(c.engine)
	return err == nil
}

// Compile writes source to a temporary directory, runs the engine with
// -interaction=nonstopmode -halt-on-error and returns the PDF bytes.
// The directory is removed before Compile returns.
func (c *Compiler) Compile(ctx context.Context, source string) (*Result, error) {
	if _, err := exec.LookPath(c.engine); err != nil {
		c.metrics.ObserveCompile(observability.OutcomeUnavailable, 0)
		return nil, &CompilationError{
			Message: fmt.Sprintf("%s not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)", c.engine),
			Cause:   fmt.Errorf("%w: %v", ErrToolchainUnavailable, err),
		}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, &CompilationError{
			Message: "failed to create temporary working directory",
			Cause:   err,
		}
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			c.logger.Warn("failed to remove compile directory", "dir", workDir, "err", err)
		}
	}()

	texPath := filepath.Join(workDir, texFileName)
	if err := os.WriteFile(texPath, []byte(source), 0o600); err != nil {
		return nil, &CompilationError{
			Message: fmt.Sprintf("failed to write LaTeX file to working directory: %s", workDir),
			Cause:   err,
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.engine,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", workDir,
		texPath)
	cmd.Dir = workDir
	cmd.WaitDelay = time.Second

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)
	logOutput := output.String()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		c.metrics.ObserveCompile(observability.OutcomeTimeout, elapsed)
		c.logger.Warn("LaTeX compilation timed out", "engine", c.engine, "timeout", c.timeout)
		return nil, &CompilationError{
			Message:   fmt.Sprintf("LaTeX compilation timed out after %s", c.timeout),
			LogOutput: logOutput,
			Cause:     context.DeadlineExceeded,
		}
	}
	if runErr != nil {
		c.metrics.ObserveCompile(observability.OutcomeFailure, elapsed)
		c.logger.Debug("LaTeX compilation failed", "engine", c.engine, "err", runErr)
		cause := runErr
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = ctxErr
		}
		return nil, &CompilationError{
			Message:   "LaTeX compilation failed",
			LogOutput: logOutput,
			Cause:     cause,
		}
	}

	pdfPath := filepath.Join(workDir, pdfFileName)
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		c.metrics.ObserveCompile(observability.OutcomeFailure, elapsed)
		return nil, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     err,
		}
	}
	c.metrics.ObserveCompile(observability.OutcomeSuccess, elapsed)

	pages, err := c.countPages(ctx, pdfPath)
	if err != nil {
		c.logger.Debug("page count unavailable", "err", err)
		pages = 0
	}

	c.logger.Debug("LaTeX compiled", "bytes", len(pdf), "pages", pages, "elapsed", elapsed.Round(time.Millisecond))
	return &Result{PDF: pdf, Pages: pages, Log: logOutput}, nil
}

var _ PDFCompiler = (*Compiler)(nil)

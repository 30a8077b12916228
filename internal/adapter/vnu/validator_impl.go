package vnu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/pkg/metrics"
)

const (
	JarName = "vnu.jar"

	msgJarMissing  = "vnu.jar not found."
	msgJavaMissing = "Java runtime not found."
	msgTimedOut    = "Validation timed out."
)

// Validator runs the Nu HTML Checker (vnu.jar) as a subprocess.
type Validator struct {
	dir      string
	timeout  time.Duration
	lookPath func(string) (string, error)
	run      runner
}

var _ repository.ValidatorRepository = (*Validator)(nil)

// NewValidator creates a validator using dir/vnu.jar and, when present,
// the runtime bundled under dir/jre.
func NewValidator(dir string, timeout time.Duration) *Validator {
	return &Validator{
		dir:      dir,
		timeout:  timeout,
		lookPath: exec.LookPath,
		run:      execCommand,
	}
}

func (v *Validator) jarPath() string {
	return filepath.Join(v.dir, JarName)
}

// Validate checks html and never fails; unavailability, timeouts and crashes
// are reported inside the result.
func (v *Validator) Validate(ctx context.Context, html string) entity.ValidationResult {
	result := v.validate(ctx, html)
	metrics.ValidatorRunsTotal.WithLabelValues(outcome(result)).Inc()
	return result
}

func (v *Validator) validate(ctx context.Context, html string) entity.ValidationResult {
	if _, err := os.Stat(v.jarPath()); err != nil {
		return entity.Unavailable(msgJarMissing)
	}
	java, err := resolveJava(ctx, v.dir, v.lookPath, v.run)
	if err != nil {
		return entity.Unavailable(msgJavaMissing)
	}

	tmpPath, err := writeTemp(html)
	if tmpPath != "" {
		defer func() {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("Failed to remove validator temp file", "path", tmpPath, "error", rmErr)
			}
		}()
	}
	if err != nil {
		return unknown(err.Error())
	}

	runCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	stdout, stderr, code, err := v.run(runCtx, java, "-jar", v.jarPath(), "--format", "json", tmpPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return unknown(msgTimedOut)
		}
		return unknown(err.Error())
	}

	if code == 0 {
		valid := true
		return entity.ValidationResult{Available: true, Valid: &valid, Messages: []entity.Diagnostic{}}
	}

	raw := strings.TrimSpace(string(stderr))
	if raw == "" {
		raw = strings.TrimSpace(string(stdout))
	}
	invalid := false
	return entity.ValidationResult{
		Available: true,
		Valid:     &invalid,
		Messages:  ParseDiagnostics(raw, code),
	}
}

func writeTemp(html string) (string, error) {
	f, err := os.CreateTemp("", "audit-*.html")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return f.Name(), fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return f.Name(), fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func unknown(reason string) entity.ValidationResult {
	return entity.ValidationResult{Available: true, Messages: []entity.Diagnostic{}, Error: reason}
}

// ParseDiagnostics decodes the checker's JSON output. Output that is not the
// expected JSON becomes a single synthetic error carrying the raw text, and a
// well-formed payload without messages becomes a single record naming the exit
// status, so a failed run always explains itself.
func ParseDiagnostics(raw string, exitCode int) []entity.Diagnostic {
	var payload struct {
		Messages []entity.Diagnostic `json:"messages"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		msg := raw
		if msg == "" {
			msg = fmt.Sprintf("validator exited with status %d and no output", exitCode)
		}
		return []entity.Diagnostic{{Type: "error", Message: msg}}
	}
	if len(payload.Messages) == 0 {
		return []entity.Diagnostic{{Type: "error", Message: fmt.Sprintf("validator exited with status %d", exitCode)}}
	}
	for i := range payload.Messages {
		if payload.Messages[i].Type == "" {
			payload.Messages[i].Type = "info"
		}
	}
	return payload.Messages
}

func outcome(r entity.ValidationResult) string {
	switch {
	case !r.Available:
		return "unavailable"
	case r.Valid == nil:
		return "unknown"
	case *r.Valid:
		return "valid"
	default:
		return "invalid"
	}
}

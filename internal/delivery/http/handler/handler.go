package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/html5-auditor/internal/delivery/http/request"
	"github.com/user/html5-auditor/internal/delivery/http/response"
	"github.com/user/html5-auditor/internal/entity"
	"github.com/user/html5-auditor/internal/report"
	"github.com/user/html5-auditor/internal/repository"
	"github.com/user/html5-auditor/internal/usecase"
	"github.com/user/html5-auditor/pkg/utils"
)

const (
	healthTimeout = 2 * time.Second
	writeWait     = 10 * time.Second
)

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auditor      usecase.Auditor
	results      repository.AuditResultRepository
	failures     repository.AuditFailureRepository
	health       map[string]Pinger
	auditTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewHandler wires the API. results and failures may be nil when no database
// is configured; lookups then answer 503.
func NewHandler(
	auditor usecase.Auditor,
	results repository.AuditResultRepository,
	failures repository.AuditFailureRepository,
	health map[string]Pinger,
	auditTimeout time.Duration,
) *Handler {
	return &Handler{
		auditor:      auditor,
		results:      results,
		failures:     failures,
		health:       health,
		auditTimeout: auditTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	var req request.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !validURL(req.URL) {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.auditTimeout)
	defer cancel()

	result, err := h.auditor.Audit(ctx, req.URL, usecase.Options{Force: req.Force})
	if err != nil {
		status, resp := auditError(err)
		h.writeJSON(w, status, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, result.WithoutHTML())
}

func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, result.WithoutHTML())
}

func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "html" {
		h.writeJSONError(w, "format must be text or html", http.StatusBadRequest)
		return
	}

	result, ok := h.latest(w, r)
	if !ok {
		return
	}
	rep := report.Build(result)

	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(rep.Text()))
		return
	}

	fragment, err := rep.HTML()
	if err != nil {
		slog.Error("Failed to render HTML report", "url", result.URL, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(htmlPage(fragment)))
}

// latest loads the stored result named by the url query parameter and writes
// the error response itself when there is none.
func (h *Handler) latest(w http.ResponseWriter, r *http.Request) (*entity.AuditResult, bool) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return nil, false
	}
	if !validURL(rawURL) {
		h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
		return nil, false
	}
	if h.results == nil {
		h.writeJSONError(w, "Result store not configured", http.StatusServiceUnavailable)
		return nil, false
	}

	target := utils.NormalizeURL(rawURL)
	result, err := h.results.FindByURL(r.Context(), target)
	if errors.Is(err, repository.ErrNotFound) {
		resp := response.ErrorResponse{Error: "No audit found for the given URL"}
		resp.LastFailure = h.lastFailure(r.Context(), target)
		h.writeJSON(w, http.StatusNotFound, resp)
		return nil, false
	}
	if err != nil {
		slog.Error("Failed to load audit result", "url", target, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return result, true
}

func (h *Handler) lastFailure(ctx context.Context, url string) *entity.AuditFailure {
	if h.failures == nil {
		return nil
	}
	f, err := h.failures.FindByURL(ctx, url)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("Failed to load audit failure", "url", url, "error", err)
		}
		return nil
	}
	return f
}

// HandleStream upgrades to a websocket, runs one audit and sends a frame per
// status change followed by a result or error frame.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if !validURL(rawURL) {
		h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(r.Context(), h.auditTimeout)
	defer cancel()

	send := func(frame response.StreamFrame) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			slog.Debug("Failed to write stream frame", "type", frame.Type, "error", err)
		}
	}

	// Audit calls OnStatus from this goroutine, so writes never overlap.
	result, err := h.auditor.Audit(ctx, rawURL, usecase.Options{
		Force: r.URL.Query().Get("force") == "true",
		OnStatus: func(u entity.StatusUpdate) {
			send(response.StreamFrame{Type: response.FrameStatus, Status: &u})
		},
	})
	if err != nil {
		_, resp := auditError(err)
		send(response.StreamFrame{Type: response.FrameError, Error: &resp})
	} else {
		res := result.WithoutHTML()
		send(response.StreamFrame{Type: response.FrameResult, Result: &res})
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "audit finished"))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Checks: map[string]string{}}
	for name, p := range h.health {
		if err := p.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// auditError maps use case errors to an HTTP status and body.
func auditError(err error) (int, response.ErrorResponse) {
	errorType := usecase.ErrorType(err)
	switch {
	case errors.Is(err, usecase.ErrEmptyURL):
		return http.StatusBadRequest, response.ErrorResponse{Error: "URL is required"}
	case errorType == "timeout":
		return http.StatusGatewayTimeout, response.ErrorResponse{Error: err.Error(), ErrorType: errorType}
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, response.ErrorResponse{Error: "Request cancelled"}
	case errorType == "unknown", errorType == "analysis":
		slog.Error("Audit failed unexpectedly", "error", err)
		return http.StatusInternalServerError, response.ErrorResponse{Error: "Internal server error"}
	default:
		return http.StatusBadGateway, response.ErrorResponse{Error: err.Error(), ErrorType: errorType}
	}
}

// validURL accepts scheme-less input the same way audits normalize it.
func validURL(raw string) bool {
	normalized := utils.NormalizeURL(raw)
	if normalized == "" {
		return false
	}
	u, err := url.ParseRequestURI(normalized)
	return err == nil && u.Host != ""
}

func htmlPage(fragment string) string {
	return `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Audit report</title></head><body>` +
		fragment + `</body></html>`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}

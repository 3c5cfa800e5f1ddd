package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/meridian-data/funnelboard/internal/cache"
	"github.com/meridian-data/funnelboard/internal/dashboard/notifier"
	"github.com/meridian-data/funnelboard/internal/funnel"
)

// Handlers provides the HTTP handlers for the dashboard.
type Handlers struct {
	pipeline *funnel.Pipeline
	cache    *cache.Cache
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(p *funnel.Pipeline, c *cache.Cache, n *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{pipeline: p, cache: c, notifier: n, logger: logger}
}

// Board renders the dashboard page. A failed render produces the error
// page instead of a broken half-dashboard.
func (h *Handlers) Board(w http.ResponseWriter, r *http.Request) {
	page, err := h.pipeline.Render(r.Context())
	if err != nil {
		h.logger.Error("dashboard render failed", "error", err)
		body, terr := renderErrorPage(err)
		if terr != nil {
			http.Error(w, terr.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write(body)
		return
	}

	body, err := renderPage(page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// Data serves the assembled page model as JSON, for scripted consumers.
func (h *Handlers) Data(w http.ResponseWriter, r *http.Request) {
	page, err := h.pipeline.Render(r.Context())
	if err != nil {
		h.logger.Error("data render failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

// Updates is the long-lived SSE endpoint. It subscribes to refresh
// broadcasts and patches the board fragment into connected pages.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case runID := <-updates:
			page, err := h.pipeline.Render(ctx)
			if err != nil {
				h.logger.Error("update render failed", "run_id", runID, "error", err)
				_ = sse.ConsoleError(err)
				continue
			}
			body, err := renderBoard(page)
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElements(string(body)); err != nil {
				return
			}
			h.logger.Debug("board patched", "run_id", runID)
		}
	}
}

// Refresh drops all cached results and notifies connected pages. The
// next render re-queries the warehouse.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	h.cache.Reset()
	h.logger.Info("manual refresh", "run_id", runID)
	h.notifier.Broadcast(runID)
	w.WriteHeader(http.StatusNoContent)
}

package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/flux/internal/app"
	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
)

// Service is the part of the application the handler serves.
type Service interface {
	Sync(ctx context.Context, adapter string) (*orchestrator.SyncReport, error)
	Status(adapter string) (orchestrator.Status, bool)
	ConnectSpreadsheet(ctx context.Context, urlOrID string) (*orchestrator.SyncReport, error)
	DisconnectSpreadsheet(ctx context.Context)
	SpreadsheetID() string
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the sync endpoints, one per adapter name.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/{adapter}", h.sync)
	r.Get("/{adapter}", h.status)
}

// SheetRoutes mounts the spreadsheet connection endpoints.
func (h *Handler) SheetRoutes(r chi.Router) {
	r.Get("/", h.sheet)
	r.Post("/connect", h.connect)
	r.Delete("/", h.disconnect)
}

type reportResponse struct {
	Adapter    string `json:"adapter"`
	Pulled     int    `json:"pulled"`
	Local      int    `json:"local"`
	Merged     int    `json:"merged"`
	PushedBack bool   `json:"pushed_back"`
	Persisted  bool   `json:"persisted"`
	Shared     bool   `json:"shared"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	Error      string `json:"error,omitempty"`
}

type statusResponse struct {
	Adapter  string     `json:"adapter"`
	Phase    string     `json:"phase"`
	Error    string     `json:"error,omitempty"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

type sheetResponse struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Connected     bool   `json:"connected"`
}

type connectRequest struct {
	URL string `json:"url"`
}

func toReportResponse(report *orchestrator.SyncReport, err error) reportResponse {
	resp := reportResponse{
		Adapter:    report.Adapter,
		Pulled:     report.Pulled,
		Local:      report.Local,
		Merged:     report.Merged,
		PushedBack: report.PushedBack,
		Persisted:  report.Persisted,
		Shared:     report.Shared,
		ElapsedMS:  report.Elapsed.Milliseconds(),
	}

	if err != nil {
		resp.Error = err.Error()
	}

	return resp
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Sync(r.Context(), chi.URLParam(r, "adapter"))

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toReportResponse(report, nil))
	case errors.Is(err, orchestrator.ErrPushBack) && report != nil:
		// The local set was updated; only the remote copy is stale.
		writeJSON(w, http.StatusBadGateway, toReportResponse(report, err))
	default:
		writeError(w, err)
	}
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "adapter")

	st, ok := h.svc.Status(name)
	if !ok {
		http.Error(w, "unknown adapter", http.StatusNotFound)
		return
	}

	resp := statusResponse{Adapter: name, Phase: st.Phase.String()}

	if st.LastErr != nil {
		resp.Error = st.LastErr.Error()
	}

	if !st.LastSync.IsZero() {
		resp.LastSync = new(st.LastSync)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) sheet(w http.ResponseWriter, _ *http.Request) {
	id := h.svc.SpreadsheetID()
	writeJSON(w, http.StatusOK, sheetResponse{SpreadsheetID: id, Connected: id != ""})
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.svc.ConnectSpreadsheet(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report, nil))
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	h.svc.DisconnectSpreadsheet(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrUnknownAdapter):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, app.ErrInvalidSpreadsheet):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orchestrator.ErrNotReady), errors.Is(err, app.ErrSheetsDisabled):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Warn("remote call failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/flux/internal/importer"
)

const maxImportSize = 10 << 20

// Service is the part of the application the handler serves.
type Service interface {
	Export(w io.Writer) error
	ExportFilename() string
	Import(ctx context.Context, r io.Reader) (*importer.Result, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts GET /export.csv and POST /import.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/export.csv", h.export)
	r.Post("/import", h.importCSV)
}

func (h *Handler) export(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.Export(&buf); err != nil {
		slog.Error("failed to export transactions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.ExportFilename()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

type skippedRow struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Charset  string       `json:"charset"`
	Imported int          `json:"imported"`
	Skipped  []skippedRow `json:"skipped"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, importer.ErrNoHeader) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	resp := importResponse{
		Charset:  res.Charset,
		Imported: len(res.Transactions),
		Skipped:  make([]skippedRow, 0, len(res.Skipped)),
	}

	for _, row := range res.Skipped {
		resp.Skipped = append(resp.Skipped, skippedRow{Line: row.Line, Error: row.Err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

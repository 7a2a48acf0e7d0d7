package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Service is the part of the application the handler serves.
type Service interface {
	Transactions() []transaction.Transaction
	Transaction(id string) (transaction.Transaction, error)
	AddTransaction(ctx context.Context, p transaction.CreateParams) (*orchestrator.CreateReport, error)
	Summary(year int, month time.Month) transaction.Summary
}

type Handler struct {
	svc Service
	now func() time.Time
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type createTransactionRequest struct {
	Date     string           `json:"date"`
	Label    string           `json:"label"`
	Amount   decimal.Decimal  `json:"amount"`
	Kind     transaction.Kind `json:"kind"`
	Category string           `json:"category"`
	Note     string           `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := transaction.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := h.svc.AddTransaction(r.Context(), transaction.CreateParams{
		Date:     date,
		Label:    req.Label,
		Amount:   req.Amount,
		Kind:     req.Kind,
		Category: req.Category,
		Note:     req.Note,
	})
	if err != nil {
		if errors.Is(err, transaction.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toCreateResponse(report)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs := h.svc.Transactions()

	if kind, ok := transaction.ParseKind(r.URL.Query().Get("kind")); ok {
		filtered := txs[:0]

		for _, tx := range txs {
			if tx.Kind == kind {
				filtered = append(filtered, tx)
			}
		}

		txs = filtered
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Transaction(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Summary serves the monthly totals. year and month default to the current
// month.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	year, month := now.Year(), now.Month()

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}

		year = y
	}

	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			http.Error(w, "invalid month", http.StatusBadRequest)
			return
		}

		month = time.Month(m)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSummaryResponse(h.svc.Summary(year, month))); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

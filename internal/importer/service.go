// Package importer reads transactions back from CSV files in the export
// layout, whatever their text encoding.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Result is the outcome of one import.
type Result struct {
	Charset      string
	Transactions []transaction.Transaction
	Skipped      []Row
}

type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{logger: logger, now: time.Now}
}

// Import decodes and parses r and turns every valid row into a new
// transaction with a fresh id. Nothing is stored.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	decoded, charset, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding import: %w", err)
	}

	rows, err := Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing import: %w", err)
	}

	res := &Result{Charset: charset}
	now := s.now()

	for _, row := range rows {
		if row.Err != nil {
			res.Skipped = append(res.Skipped, row)
			continue
		}

		res.Transactions = append(res.Transactions, transaction.New(row.Params, now))
	}

	s.logger.InfoContext(ctx, "parsed import",
		"charset", charset,
		"rows", len(rows),
		"imported", len(res.Transactions),
		"skipped", len(res.Skipped),
	)

	return res, nil
}

// Package export serialises the local transaction set as CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Header is the first CSV row.
var Header = []string{"Date", "Label", "Category", "Kind", "Amount", "Note"}

// Source provides the transactions to export.
type Source interface {
	List() []transaction.Transaction
}

type Service struct {
	source Source
	now    func() time.Time
}

// NewService exports from source. now dates the export filename and
// defaults to time.Now.
func NewService(source Source, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{source: source, now: now}
}

// Filename is the suggested download name for an export made at now.
func Filename(now time.Time) string {
	return "flux-export-" + now.UTC().Format(time.DateOnly) + ".csv"
}

// Filename returns the download name for an export made now.
func (s *Service) Filename() string {
	return Filename(s.now())
}

// Export writes the current local set to w.
func (s *Service) Export(w io.Writer) error {
	return WriteCSV(w, s.source.List())
}

// WriteCSV writes txs as UTF-8 CSV with a byte-order mark. Every field is
// quoted and rows are separated by a bare LF with none after the last row.
func WriteCSV(w io.Writer, txs []transaction.Transaction) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	bw := bufio.NewWriter(tw)

	writeRow(bw, Header)

	for _, tx := range txs {
		bw.WriteByte('\n')
		writeRow(bw, []string{
			transaction.FormatDate(tx.Date),
			tx.Label,
			tx.Category,
			string(tx.Kind),
			tx.Amount.String(),
			tx.Note,
		})
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}

func writeRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}

		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
}

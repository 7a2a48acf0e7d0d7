package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

var ErrNoHeader = errors.New("missing or unrecognised header row")

type column int

const (
	colDate column = iota
	colLabel
	colCategory
	colKind
	colAmount
	colNote
)

// headerNames maps header cells, lower-cased, to columns. The French names
// are those of exports made by earlier versions.
var headerNames = map[string]column{
	"date":      colDate,
	"label":     colLabel,
	"intitule":  colLabel,
	"category":  colCategory,
	"categorie": colCategory,
	"kind":      colKind,
	"type":      colKind,
	"amount":    colAmount,
	"montant":   colAmount,
	"note":      colNote,
}

var kindNames = map[string]transaction.Kind{
	"depense": transaction.KindExpense,
	"recette": transaction.KindIncome,
}

// Row is one parsed line, or the reason it was skipped.
type Row struct {
	Line   int
	Params transaction.CreateParams
	Err    error
}

// Parse reads CSV in export layout. The delimiter is ',' or ';', whichever
// the header line uses more. Rows that fail validation are returned with
// Err set; only an unreadable header fails the whole parse.
func Parse(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)

	firstLine, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if i := bytes.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter(firstLine)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}

		return nil, fmt.Errorf("reading header: %w", err)
	}

	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []Row

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			rows = append(rows, Row{Line: line, Err: err})
			continue
		}

		if blank(record) {
			continue
		}

		params, err := parseRecord(record, index, cr.Comma)
		rows = append(rows, Row{Line: line, Params: params, Err: err})
	}

	return rows, nil
}

func delimiter(line []byte) rune {
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}

	return ','
}

func mapHeader(header []string) (map[column]int, error) {
	index := make(map[column]int, len(header))

	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		if col, ok := headerNames[name]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}

	for _, required := range []column{colDate, colLabel, colKind, colAmount} {
		if _, ok := index[required]; !ok {
			return nil, ErrNoHeader
		}
	}

	return index, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}

func parseRecord(record []string, index map[column]int, comma rune) (transaction.CreateParams, error) {
	field := func(c column) string {
		i, ok := index[c]
		if !ok || i >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	date, err := transaction.ParseDate(field(colDate))
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("%w: bad date %q", transaction.ErrInvalid, field(colDate))
	}

	amount, err := parseAmount(field(colAmount), comma)
	if err != nil {
		return transaction.CreateParams{}, err
	}

	kind, ok := parseKind(field(colKind))
	if !ok {
		return transaction.CreateParams{}, fmt.Errorf("%w: unknown kind %q", transaction.ErrInvalid, field(colKind))
	}

	params := transaction.CreateParams{
		Date:     date,
		Label:    field(colLabel),
		Amount:   amount,
		Kind:     kind,
		Category: field(colCategory),
		Note:     field(colNote),
	}

	if params.Category == "" {
		params.Category = defaultCategory(kind)
	}

	if err := params.Validate(); err != nil {
		return transaction.CreateParams{}, err
	}

	return params, nil
}

// parseAmount accepts a decimal comma when the file is ';'-separated.
func parseAmount(s string, comma rune) (decimal.Decimal, error) {
	if comma == ';' {
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad amount %q", transaction.ErrInvalid, s)
	}

	return d.Abs(), nil
}

func parseKind(s string) (transaction.Kind, bool) {
	if k, ok := transaction.ParseKind(s); ok {
		return k, true
	}

	k, ok := kindNames[strings.ToLower(s)]

	return k, ok
}

func defaultCategory(kind transaction.Kind) string {
	cats := transaction.Categories(kind)
	if len(cats) == 0 {
		return ""
	}

	return cats[len(cats)-1]
}

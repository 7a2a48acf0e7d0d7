package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/session"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

const DefaultTable = "transactions"

var columns = []string{
	transaction.ColumnID,
	transaction.ColumnOwnerID,
	transaction.ColumnDate,
	transaction.ColumnLabel,
	transaction.ColumnAmount,
	transaction.ColumnKind,
	transaction.ColumnCategory,
	transaction.ColumnNote,
	transaction.ColumnUpdatedAt,
}

type Store struct {
	db      *sql.DB
	table   string
	session *session.Session
}

// New returns an adapter over db. Rows are read and written on behalf of
// the owner of sess.
func New(db *sql.DB, table string, sess *session.Session) *Store {
	if table == "" {
		table = DefaultTable
	}

	return &Store{
		db:      db,
		table:   pgx.Identifier{table}.Sanitize(),
		session: sess,
	}
}

func (s *Store) Name() string { return remote.NameRowStore }

func (s *Store) Ready() bool {
	return s.db != nil && s.session.Authenticated()
}

// EnsureSchema creates the table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			id         TEXT        NOT NULL,
			owner_id   TEXT        NOT NULL,
			date       DATE,
			label      TEXT        NOT NULL DEFAULT '',
			amount     NUMERIC     NOT NULL DEFAULT 0,
			kind       TEXT        NOT NULL DEFAULT '',
			category   TEXT        NOT NULL DEFAULT '',
			note       TEXT        NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (owner_id, id)
		)
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	return nil
}

func (s *Store) Pull(ctx context.Context) ([]transaction.Transaction, error) {
	if !s.Ready() {
		return nil, remote.ErrUnauthenticated
	}

	query := `SELECT ` + strings.Join(columns, ", ") + `
		FROM ` + s.table + `
		WHERE owner_id = $1`

	rows, err := s.db.QueryContext(ctx, query, s.session.Owner())
	if err != nil {
		return nil, fmt.Errorf("listing rows: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var txs []transaction.Transaction

	for rows.Next() {
		fields, err := scanFields(rows, names)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		txs = append(txs, transaction.FromRemoteRow(fields))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return txs, nil
}

// scanFields reads the current row into a column-name keyed map, leaving the
// driver's value types untouched.
func scanFields(rows *sql.Rows, names []string) (map[string]any, error) {
	values := make([]any, len(names))
	dest := make([]any, len(names))

	for i := range values {
		dest[i] = &values[i]
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(names))
	for i, name := range names {
		fields[name] = values[i]
	}

	return fields, nil
}

func (s *Store) upsertQuery() string {
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))

	for i, c := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)

		if c == transaction.ColumnID || c == transaction.ColumnOwnerID {
			continue
		}

		updates = append(updates, c+" = EXCLUDED."+c)
	}

	return `INSERT INTO ` + s.table + ` (` + strings.Join(columns, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (owner_id, id) DO UPDATE SET ` + strings.Join(updates, ", ")
}

// PushAll upserts txs in a single database transaction.
func (s *Store) PushAll(ctx context.Context, txs []transaction.Transaction) error {
	if !s.Ready() {
		return remote.ErrUnauthenticated
	}

	if len(txs) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, s.upsertQuery())
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	owner := s.session.Owner()

	for _, tx := range txs {
		row := transaction.ToRemoteRow(tx, owner)

		_, err := stmt.ExecContext(ctx,
			row.ID,
			row.OwnerID,
			sql.NullString{String: row.Date, Valid: row.Date != ""},
			row.Label,
			row.Amount,
			row.Kind,
			row.Category,
			row.Note,
			row.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting %s: %w", row.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}

	return nil
}

func (s *Store) PushOne(ctx context.Context, tx transaction.Transaction) error {
	return s.PushAll(ctx, []transaction.Transaction{tx})
}

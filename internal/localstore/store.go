// Package localstore keeps the full transaction set on the device. It is the
// source of truth whenever no remote backend is reachable.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

var bucketName = []byte("flux")

const (
	transactionsKey  = "flux_transactions"
	spreadsheetIDKey = "flux_google_sheet_id"
)

// Store holds the transaction set in memory and mirrors every change to a
// bbolt file. The in-memory copy stays authoritative for the session even
// when a write to disk fails.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger

	mu            sync.RWMutex
	txs           []transaction.Transaction
	spreadsheetID string
}

// Open opens or creates the store file at path and loads its contents. An
// unreadable transaction list is discarded and the store starts empty.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	s := &Store{db: db, logger: logger}
	s.load()

	return s, nil
}

func (s *Store) load() {
	var raw, sheet []byte

	_ = s.db.View(func(btx *bolt.Tx) error {
		b := btx.Bucket(bucketName)
		raw = slices.Clone(b.Get([]byte(transactionsKey)))
		sheet = slices.Clone(b.Get([]byte(spreadsheetIDKey)))

		return nil
	})

	s.spreadsheetID = string(sheet)

	if len(raw) == 0 {
		return
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.Warn("discarding unreadable local transactions", "error", err)
		return
	}

	s.txs = make([]transaction.Transaction, 0, len(records))
	for _, r := range records {
		s.txs = append(s.txs, r.transaction())
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// List returns a copy of the current transaction set.
func (s *Store) List() []transaction.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.txs)
}

func (s *Store) Get(id string) (transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}

	return transaction.Transaction{}, transaction.ErrNotFound
}

// Append puts tx at the front of the set and persists. The returned error
// only reports the disk write; tx is kept in memory regardless.
func (s *Store) Append(tx transaction.Transaction) error {
	return s.Update(func(current []transaction.Transaction) []transaction.Transaction {
		return append([]transaction.Transaction{tx}, current...)
	})
}

// Update assigns fn(current) as the new set and persists it. fn runs with
// the store locked and must not call back into the store.
func (s *Store) Update(fn func(current []transaction.Transaction) []transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = slices.Clone(fn(slices.Clone(s.txs)))

	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	records := make([]record, len(s.txs))
	for i, tx := range s.txs {
		records[i] = toRecord(tx)
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}

	return s.put(transactionsKey, raw)
}

// SpreadsheetID returns the last connected spreadsheet, or "".
func (s *Store) SpreadsheetID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.spreadsheetID
}

func (s *Store) SetSpreadsheetID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spreadsheetID = id

	return s.put(spreadsheetIDKey, []byte(id))
}

func (s *Store) put(key string, value []byte) error {
	err := s.db.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("persisting %s: %w", key, err)
	}

	return nil
}

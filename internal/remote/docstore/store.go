// Package docstore is a row-store backend on MongoDB: one document per
// transaction, unique on (owner_id, id).
package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/session"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

type Store struct {
	coll    Collection
	session *session.Session
}

func New(coll Collection, sess *session.Session) *Store {
	return &Store{coll: coll, session: sess}
}

func (s *Store) Name() string { return remote.NameRowStore }

func (s *Store) Ready() bool {
	return s.coll != nil && s.session.Authenticated()
}

func (s *Store) Pull(ctx context.Context) ([]transaction.Transaction, error) {
	if !s.Ready() {
		return nil, remote.ErrUnauthenticated
	}

	docs, err := s.coll.FindAll(ctx, bson.M{transaction.ColumnOwnerID: s.session.Owner()})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	txs := make([]transaction.Transaction, 0, len(docs))
	for _, doc := range docs {
		txs = append(txs, transaction.FromRemoteRow(doc))
	}

	return txs, nil
}

func document(row transaction.RemoteRow) bson.M {
	doc := bson.M{
		transaction.ColumnID:        row.ID,
		transaction.ColumnOwnerID:   row.OwnerID,
		transaction.ColumnDate:      row.Date,
		transaction.ColumnLabel:     row.Label,
		transaction.ColumnKind:      row.Kind,
		transaction.ColumnCategory:  row.Category,
		transaction.ColumnNote:      row.Note,
		transaction.ColumnUpdatedAt: row.UpdatedAt,
	}

	amount, err := primitive.ParseDecimal128(row.Amount.String())
	if err != nil {
		doc[transaction.ColumnAmount] = row.Amount.String()
	} else {
		doc[transaction.ColumnAmount] = amount
	}

	return doc
}

// PushAll replaces or inserts one document per transaction in a single
// unordered bulk write.
func (s *Store) PushAll(ctx context.Context, txs []transaction.Transaction) error {
	if !s.Ready() {
		return remote.ErrUnauthenticated
	}

	if len(txs) == 0 {
		return nil
	}

	owner := s.session.Owner()
	models := make([]mongo.WriteModel, 0, len(txs))

	for _, tx := range txs {
		row := transaction.ToRemoteRow(tx, owner)

		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{transaction.ColumnOwnerID: owner, transaction.ColumnID: row.ID}).
			SetReplacement(document(row)).
			SetUpsert(true))
	}

	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}

	return nil
}

func (s *Store) PushOne(ctx context.Context, tx transaction.Transaction) error {
	return s.PushAll(ctx, []transaction.Transaction{tx})
}

package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/session"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

type fakeCollection struct {
	docs      []bson.M
	filter    bson.M
	models    []mongo.WriteModel
	ordered   *bool
	findErr   error
	bulkErr   error
	bulkCalls int
}

func (f *fakeCollection) FindAll(_ context.Context, filter bson.M) ([]bson.M, error) {
	f.filter = filter
	return f.docs, f.findErr
}

func (f *fakeCollection) BulkWrite(_ context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	f.bulkCalls++
	f.models = models

	for _, o := range opts {
		if o.Ordered != nil {
			f.ordered = o.Ordered
		}
	}

	if f.bulkErr != nil {
		return nil, f.bulkErr
	}

	return &mongo.BulkWriteResult{UpsertedCount: int64(len(models))}, nil
}

func TestStore_Pull(t *testing.T) {
	amount, err := primitive.ParseDecimal128("42.50")
	require.NoError(t, err)

	coll := &fakeCollection{docs: []bson.M{
		{
			"id":         "t1",
			"owner_id":   "owner-1",
			"date":       "2024-03-01",
			"label":      "Groceries",
			"amount":     amount,
			"kind":       "expense",
			"category":   "Food",
			"note":       "",
			"updated_at": "2024-03-01T10:00:00.000Z",
		},
		{"id": "t2", "amount": "not-a-number"},
	}}

	store := New(coll, session.FromOwner("owner-1"))

	got, err := store.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, bson.M{"owner_id": "owner-1"}, coll.filter)
	assert.Equal(t, "t1", got[0].ID)
	assert.True(t, decimal.RequireFromString("42.5").Equal(got[0].Amount))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got[0].UpdatedAt)

	assert.Equal(t, "t2", got[1].ID)
	assert.True(t, got[1].Amount.IsZero())
	assert.True(t, got[1].Date.IsZero())
	assert.Zero(t, got[1].Precedence())
}

func TestStore_PullError(t *testing.T) {
	coll := &fakeCollection{findErr: errors.New("connection reset")}
	store := New(coll, session.FromOwner("owner-1"))

	_, err := store.Pull(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestStore_PushAll(t *testing.T) {
	coll := &fakeCollection{}
	store := New(coll, session.FromOwner("owner-1"))

	txs := []transaction.Transaction{
		{
			ID:        "t1",
			Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Label:     "Rent",
			Amount:    decimal.RequireFromString("900"),
			Kind:      transaction.KindExpense,
			Category:  "Housing",
			UpdatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		{ID: "t2", Label: "Salary", Amount: decimal.RequireFromString("2500"), Kind: transaction.KindIncome},
	}

	require.NoError(t, store.PushAll(context.Background(), txs))
	require.Len(t, coll.models, 2)
	require.NotNil(t, coll.ordered)
	assert.False(t, *coll.ordered)

	first, ok := coll.models[0].(*mongo.ReplaceOneModel)
	require.True(t, ok)
	require.NotNil(t, first.Upsert)
	assert.True(t, *first.Upsert)
	assert.Equal(t, bson.M{"owner_id": "owner-1", "id": "t1"}, first.Filter)

	doc, ok := first.Replacement.(bson.M)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", doc["date"])
	assert.Equal(t, "2024-01-01T09:00:00.000Z", doc["updated_at"])
	assert.Equal(t, "owner-1", doc["owner_id"])
	assert.IsType(t, primitive.Decimal128{}, doc["amount"])

	second := coll.models[1].(*mongo.ReplaceOneModel).Replacement.(bson.M)
	assert.NotEmpty(t, second["updated_at"], "records without a timestamp are stamped on push")
}

func TestStore_PushAllEmpty(t *testing.T) {
	coll := &fakeCollection{}
	store := New(coll, session.FromOwner("owner-1"))

	require.NoError(t, store.PushAll(context.Background(), nil))
	assert.Zero(t, coll.bulkCalls)
}

func TestStore_PushAllError(t *testing.T) {
	coll := &fakeCollection{bulkErr: errors.New("write conflict")}
	store := New(coll, session.FromOwner("owner-1"))

	err := store.PushOne(context.Background(), transaction.Transaction{ID: "t1"})
	assert.ErrorContains(t, err, "write conflict")
}

func TestStore_Anonymous(t *testing.T) {
	coll := &fakeCollection{}
	store := New(coll, nil)

	assert.False(t, store.Ready())
	assert.Equal(t, remote.NameRowStore, store.Name())

	_, err := store.Pull(context.Background())
	assert.ErrorIs(t, err, remote.ErrUnauthenticated)
	assert.ErrorIs(t, store.PushAll(context.Background(), []transaction.Transaction{{ID: "t1"}}), remote.ErrUnauthenticated)
}

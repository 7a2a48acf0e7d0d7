package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

func TestService_CreateDisconnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	rows := newAdapter(ctrl, remote.NameRowStore, false)
	sheet := newAdapter(ctrl, remote.NameSpreadsheet, false)

	store := &memStore{txs: []transaction.Transaction{tx("1", "2024-01-01", "", 10)}}
	rec := &fakeRecorder{}
	svc := NewService(store, []remote.Adapter{rows, sheet}, WithRecorder(rec))

	report := svc.Create(context.Background(), tx("2", "2024-01-02", "2024-01-02T00:00:00Z", 20))

	assert.Equal(t, []string{"2", "1"}, ids(store.List()))
	assert.True(t, report.Persisted)
	assert.Equal(t, "saved locally", report.Message())

	for _, o := range report.Outcomes {
		assert.False(t, o.Attempted)
	}

	assert.Empty(t, rec.propagations)
}

func TestService_CreatePartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	rows := newAdapter(ctrl, remote.NameRowStore, true)
	sheet := newAdapter(ctrl, remote.NameSpreadsheet, true)

	store := &memStore{}
	newTx := tx("n1", "2024-03-01", "2024-03-01T10:00:00Z", 42)

	rows.EXPECT().PushOne(gomock.Any(), newTx).DoAndReturn(func(context.Context, transaction.Transaction) error {
		assert.Len(t, store.List(), 1, "local write happens before any remote call")
		return nil
	})
	sheet.EXPECT().PushOne(gomock.Any(), newTx).Return(errors.New("sheets api: status 500"))

	rec := &fakeRecorder{}
	svc := NewService(store, []remote.Adapter{rows, sheet}, WithRecorder(rec))

	report := svc.Create(context.Background(), newTx)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, remote.NameRowStore, report.Outcomes[0].Adapter)
	assert.True(t, report.Outcomes[0].OK())
	assert.Equal(t, remote.NameSpreadsheet, report.Outcomes[1].Adapter)
	assert.True(t, report.Outcomes[1].Attempted)
	assert.ErrorContains(t, report.Outcomes[1].Err, "500")

	assert.Equal(t, "saved; synced to rowstore, failed for sheets", report.Message())
	assert.Equal(t, []string{"n1"}, ids(store.List()), "failed propagation never undoes the local write")
	assert.ElementsMatch(t, []recorded{
		{remote.NameRowStore, ResultOK},
		{remote.NameSpreadsheet, ResultError},
	}, rec.propagations)
}

func TestService_CreatePersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	rows := newAdapter(ctrl, remote.NameRowStore, true)

	store := &memStore{appendErr: errors.New("read-only file system")}
	newTx := tx("n1", "2024-03-01", "", 42)

	rows.EXPECT().PushOne(gomock.Any(), newTx).Return(nil)

	svc := NewService(store, []remote.Adapter{rows})

	report := svc.Create(context.Background(), newTx)

	assert.False(t, report.Persisted)
	assert.True(t, report.Outcomes[0].OK())
	assert.Len(t, svc.Transactions(), 1)
}

func TestCreateReport_Message(t *testing.T) {
	type testCase struct {
		name     string
		outcomes []Outcome
		want     string
	}

	boom := errors.New("boom")

	tests := []testCase{
		{
			name: "no adapters",
			want: "saved locally",
		},
		{
			name: "all synced",
			outcomes: []Outcome{
				{Adapter: "rowstore", Attempted: true},
				{Adapter: "sheets", Attempted: true},
			},
			want: "saved and synced to rowstore, sheets",
		},
		{
			name: "one skipped one synced",
			outcomes: []Outcome{
				{Adapter: "rowstore"},
				{Adapter: "sheets", Attempted: true},
			},
			want: "saved and synced to sheets",
		},
		{
			name: "all failed",
			outcomes: []Outcome{
				{Adapter: "rowstore", Attempted: true, Err: boom},
				{Adapter: "sheets", Attempted: true, Err: boom},
			},
			want: "saved locally; sync failed for rowstore, sheets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CreateReport{Outcomes: tt.outcomes}
			assert.Equal(t, tt.want, r.Message())
		})
	}
}

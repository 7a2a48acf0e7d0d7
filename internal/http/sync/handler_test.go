package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flux/internal/app"
	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
)

type fakeService struct {
	report     *orchestrator.SyncReport
	err        error
	status     map[string]orchestrator.Status
	connectErr error
	connected  string
}

func (f *fakeService) Sync(_ context.Context, adapter string) (*orchestrator.SyncReport, error) {
	if adapter == "ftp" {
		return nil, fmt.Errorf("%w: ftp", orchestrator.ErrUnknownAdapter)
	}

	return f.report, f.err
}

func (f *fakeService) Status(adapter string) (orchestrator.Status, bool) {
	st, ok := f.status[adapter]
	return st, ok
}

func (f *fakeService) ConnectSpreadsheet(_ context.Context, urlOrID string) (*orchestrator.SyncReport, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}

	f.connected = urlOrID

	return &orchestrator.SyncReport{Adapter: "sheets", Pulled: 3, Merged: 5}, nil
}

func (f *fakeService) DisconnectSpreadsheet(context.Context) { f.connected = "" }

func (f *fakeService) SpreadsheetID() string { return f.connected }

func newRouter(svc Service) http.Handler {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/sync", h.Routes)
	r.Route("/sheets", h.SheetRoutes)

	return r
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Sync(t *testing.T) {
	type testCase struct {
		name       string
		adapter    string
		svc        *fakeService
		wantStatus int
		wantBody   string
	}

	okReport := &orchestrator.SyncReport{Adapter: "rowstore", Pulled: 2, Merged: 4, PushedBack: true, Persisted: true}

	tests := []testCase{
		{
			name:       "success",
			adapter:    "rowstore",
			svc:        &fakeService{report: okReport},
			wantStatus: http.StatusOK,
			wantBody:   `"merged":4`,
		},
		{
			name:       "unknown adapter",
			adapter:    "ftp",
			svc:        &fakeService{},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "not ready",
			adapter:    "sheets",
			svc:        &fakeService{err: fmt.Errorf("syncing sheets: %w", orchestrator.ErrNotReady)},
			wantStatus: http.StatusConflict,
		},
		{
			name:    "push-back failed",
			adapter: "sheets",
			svc: &fakeService{
				report: &orchestrator.SyncReport{Adapter: "sheets", Merged: 4, Persisted: true},
				err:    fmt.Errorf("%w: sheets: quota", orchestrator.ErrPushBack),
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   `"persisted":true`,
		},
		{
			name:       "pull failed",
			adapter:    "rowstore",
			svc:        &fakeService{err: errors.New("pulling from rowstore: connection refused")},
			wantStatus: http.StatusBadGateway,
			wantBody:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newRouter(tt.svc), http.MethodPost, "/sync/"+tt.adapter, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_Status(t *testing.T) {
	last := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := &fakeService{status: map[string]orchestrator.Status{
		"rowstore": {Phase: orchestrator.PhaseIdle, LastSync: last},
		"sheets":   {Phase: orchestrator.PhaseFailed, LastErr: errors.New("boom")},
	}}
	router := newRouter(svc)

	rec := do(t, router, http.MethodGet, "/sync/rowstore", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "idle", resp.Phase)
	require.NotNil(t, resp.LastSync)
	assert.True(t, last.Equal(*resp.LastSync))

	rec = do(t, router, http.MethodGet, "/sync/sheets", "")
	assert.Contains(t, rec.Body.String(), `"phase":"failed"`)
	assert.Contains(t, rec.Body.String(), `"error":"boom"`)

	rec = do(t, router, http.MethodGet, "/sync/ftp", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Sheets(t *testing.T) {
	svc := &fakeService{}
	router := newRouter(svc)

	rec := do(t, router, http.MethodPost, "/sheets/connect", `{"url":"https://docs.google.com/spreadsheets/d/abc/edit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pulled":3`)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit", svc.connected)

	rec = do(t, router, http.MethodGet, "/sheets/", "")
	assert.Contains(t, rec.Body.String(), `"connected":true`)

	rec = do(t, router, http.MethodDelete, "/sheets/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, svc.connected)

	rec = do(t, router, http.MethodPost, "/sheets/connect", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ConnectErrors(t *testing.T) {
	type testCase struct {
		err        error
		wantStatus int
	}

	tests := []testCase{
		{err: app.ErrInvalidSpreadsheet, wantStatus: http.StatusBadRequest},
		{err: app.ErrSheetsDisabled, wantStatus: http.StatusConflict},
		{err: errors.New("reading spreadsheet: sheets: unauthorized"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := do(t, newRouter(&fakeService{connectErr: tt.err}), http.MethodPost, "/sheets/connect", `{"url":"x"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

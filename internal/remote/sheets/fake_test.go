package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testSpreadsheet = "1AbCdEfGhIjKlMnOpQrStUvWxYz"

// fakeSheets is an in-memory Sheets v4 server holding a single spreadsheet.
type fakeSheets struct {
	mu           sync.Mutex
	tabs         []string
	header       []any
	rows         [][]any
	// formatted is served instead of rows unless unformatted values are asked for.
	formatted    [][]any
	calls        []string
	auth         []string
	unauthorized int
}

func newFakeServer(t *testing.T, f *fakeSheets) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return srv
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.auth = append(f.auth, r.Header.Get("Authorization"))

	if f.unauthorized > 0 {
		f.unauthorized--
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/v4/spreadsheets/"+testSpreadsheet)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f.calls = append(f.calls, r.Method+" "+rest)

	switch {
	case r.Method == http.MethodGet && rest == "":
		f.meta(w)
	case r.Method == http.MethodPost && rest == ":batchUpdate":
		f.batchUpdate(w, r)
	case strings.HasPrefix(rest, "/values/"):
		f.values(w, r, strings.TrimPrefix(rest, "/values/"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) meta(w http.ResponseWriter) {
	type props struct {
		Title string `json:"title"`
	}

	type sheet struct {
		Properties props `json:"properties"`
	}

	out := struct {
		Sheets []sheet `json:"sheets"`
	}{}

	for _, title := range f.tabs {
		out.Sheets = append(out.Sheets, sheet{Properties: props{Title: title}})
	}

	writeJSON(w, out)
}

func (f *fakeSheets) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []struct {
			AddSheet struct {
				Properties struct {
					Title string `json:"title"`
				} `json:"properties"`
			} `json:"addSheet"`
		} `json:"requests"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, req := range body.Requests {
		f.tabs = append(f.tabs, req.AddSheet.Properties.Title)
	}

	writeJSON(w, map[string]any{})
}

func (f *fakeSheets) values(w http.ResponseWriter, r *http.Request, rng string) {
	var body ValueRange

	if r.Method != http.MethodGet && !strings.HasSuffix(rng, ":clear") {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	tab, cells, _ := strings.Cut(strings.Split(rng, ":append")[0], "!")
	if tab != DefaultTab {
		http.Error(w, fmt.Sprintf("unable to parse range: %s", rng), http.StatusBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodGet && cells == "A1:H1":
		if f.header == nil {
			writeJSON(w, ValueRange{Range: rng})
			return
		}

		writeJSON(w, ValueRange{Range: rng, Values: [][]any{f.header}})
	case r.Method == http.MethodGet && cells == "A2:H":
		if f.formatted != nil && r.URL.Query().Get("valueRenderOption") != "UNFORMATTED_VALUE" {
			writeJSON(w, ValueRange{Range: rng, Values: f.formatted})
			return
		}

		writeJSON(w, ValueRange{Range: rng, Values: f.rows})
	case r.Method == http.MethodPut && cells == "A1:H1":
		f.header = body.Values[0]
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPut && cells == "A2:H":
		f.rows = body.Values
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPost && cells == "A:H" && strings.HasSuffix(rng, ":append"):
		f.rows = append(f.rows, body.Values...)
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPost && cells == "A2:H:clear":
		f.rows = nil
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func headerRow() []any {
	row := make([]any, 0, 8)
	for _, h := range []string{"ID", "Date", "Label", "Amount", "Kind", "Category", "Note", "Timestamp"} {
		row = append(row, h)
	}

	return row
}

type fakeCredentials struct {
	mu         sync.Mutex
	refreshes  int
	refreshErr error
}

func (c *fakeCredentials) Token(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fmt.Sprintf("token-%d", c.refreshes), nil
}

func (c *fakeCredentials) Refresh(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshErr != nil {
		return c.refreshErr
	}

	c.refreshes++

	return nil
}

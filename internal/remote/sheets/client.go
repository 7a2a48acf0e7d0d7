package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the Sheets v4 spreadsheets collection.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// ErrUnauthorized is returned when the API still answers 401 after the
// credentials were refreshed once.
var ErrUnauthorized = errors.New("sheets: unauthorized")

// APIError is a non-2xx answer other than 401.
type APIError struct {
	Code int
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api: status %d", e.Code)
}

// Client is a minimal Sheets v4 REST client covering values and tab
// management.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

func NewClient(baseURL string, creds Credentials, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: httpClient,
	}
}

// Configured reports whether the client has credentials to call the API
// with. Credentials that can tell they are incomplete are asked.
func (c *Client) Configured() bool {
	if c == nil || c.creds == nil {
		return false
	}

	if cc, ok := c.creds.(interface{ Configured() bool }); ok {
		return cc.Configured()
	}

	return true
}

// ValueRange is the body of values reads and writes.
type ValueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// SheetTitles lists the tab titles of the spreadsheet.
func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	var meta spreadsheetMeta

	query := url.Values{"fields": {"sheets.properties.title"}}
	if err := c.do(ctx, http.MethodGet, c.endpoint(spreadsheetID, ""), query, nil, &meta); err != nil {
		return nil, fmt.Errorf("reading spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(meta.Sheets))
	for _, s := range meta.Sheets {
		titles = append(titles, s.Properties.Title)
	}

	return titles, nil
}

// AddSheet creates a tab named title.
func (c *Client) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	body := map[string]any{
		"requests": []any{
			map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": title}}},
		},
	}

	if err := c.do(ctx, http.MethodPost, c.endpoint(spreadsheetID, ":batchUpdate"), nil, body, nil); err != nil {
		return fmt.Errorf("adding sheet %q: %w", title, err)
	}

	return nil
}

// GetValues reads a range. Numbers come back unformatted as json.Number so
// a display format on the tab cannot change them; date cells stay strings.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	query := url.Values{
		"valueRenderOption":    {"UNFORMATTED_VALUE"},
		"dateTimeRenderOption": {"FORMATTED_STRING"},
	}

	var vr ValueRange
	if err := c.do(ctx, http.MethodGet, c.valuesEndpoint(spreadsheetID, rng, ""), query, nil, &vr); err != nil {
		return nil, fmt.Errorf("reading %s: %w", rng, err)
	}

	return vr.Values, nil
}

// UpdateValues overwrites a range with raw values.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	query := url.Values{"valueInputOption": {"RAW"}}
	body := ValueRange{Range: rng, MajorDimension: "ROWS", Values: values}

	if err := c.do(ctx, http.MethodPut, c.valuesEndpoint(spreadsheetID, rng, ""), query, body, nil); err != nil {
		return fmt.Errorf("writing %s: %w", rng, err)
	}

	return nil
}

// AppendValues inserts rows after the last row of the table found in rng.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	query := url.Values{
		"valueInputOption": {"RAW"},
		"insertDataOption": {"INSERT_ROWS"},
	}

	if err := c.do(ctx, http.MethodPost, c.valuesEndpoint(spreadsheetID, rng, ":append"), query, ValueRange{Values: values}, nil); err != nil {
		return fmt.Errorf("appending to %s: %w", rng, err)
	}

	return nil
}

// ClearValues empties a range, keeping formatting.
func (c *Client) ClearValues(ctx context.Context, spreadsheetID, rng string) error {
	if err := c.do(ctx, http.MethodPost, c.valuesEndpoint(spreadsheetID, rng, ":clear"), nil, struct{}{}, nil); err != nil {
		return fmt.Errorf("clearing %s: %w", rng, err)
	}

	return nil
}

func (c *Client) endpoint(spreadsheetID, suffix string) string {
	return c.baseURL + "/" + url.PathEscape(spreadsheetID) + suffix
}

func (c *Client) valuesEndpoint(spreadsheetID, rng, suffix string) string {
	return c.endpoint(spreadsheetID, "/values/"+url.PathEscape(rng)+suffix)
}

// do sends one API call. A 401 forces a credential refresh and the call is
// retried exactly once.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	var payload []byte

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		payload = b
	}

	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	const attempts = 2

	for attempt := range attempts {
		status, err := c.send(ctx, method, endpoint, payload, out)
		if err != nil {
			return err
		}

		if status != http.StatusUnauthorized {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		if err := c.creds.Refresh(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
	}

	return ErrUnauthorized
}

// send returns the status code for 401 so the caller can retry; every other
// non-2xx status is an *APIError.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, out any) (int, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting access token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return resp.StatusCode, &APIError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	case resp.StatusCode == http.StatusNoContent || out == nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}

	return resp.StatusCode, nil
}

package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mis/internal/platform/metrics"
)

const defaultBaseURL = "https://docs.google.com"

// Client reads a spreadsheet through its visualization-query endpoint. The
// response is JSON wrapped in a non-JSON prefix/suffix, so the payload is
// located by scanning for the first '{' and the last '}'.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Metrics *metrics.Collector
}

func NewClient(m *metrics.Collector) *Client {
	return &Client{BaseURL: defaultBaseURL, HTTP: http.DefaultClient, Metrics: m}
}

type gvizCell struct {
	V any    `json:"v"`
	F string `json:"f"`
}

type gvizRow struct {
	C []*gvizCell `json:"c"`
}

type gvizTable struct {
	Rows []gvizRow `json:"rows"`
}

type gvizResponse struct {
	Table *gvizTable `json:"table"`
}

func (c *Client) Fetch(ctx context.Context, spreadsheetID, sheetName string) ([]Row, error) {
	rows, err := c.fetch(ctx, spreadsheetID, sheetName)
	if c.Metrics != nil {
		c.Metrics.RecordFetch(err)
	}
	return rows, err
}

func (c *Client) fetch(ctx context.Context, spreadsheetID, sheetName string) ([]Row, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:json&sheet=%s",
		base, spreadsheetID, url.QueryEscape(sheetName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Spreadsheet: spreadsheetID, Sheet: sheetName, Err: err}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &NetworkError{Spreadsheet: spreadsheetID, Sheet: sheetName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{
			Spreadsheet: spreadsheetID,
			Sheet:       sheetName,
			Err:         fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Spreadsheet: spreadsheetID, Sheet: sheetName, Err: err}
	}

	return parseGviz(spreadsheetID, sheetName, body)
}

func parseGviz(spreadsheetID, sheetName string, body []byte) ([]Row, error) {
	start := strings.IndexByte(string(body), '{')
	end := strings.LastIndexByte(string(body), '}')
	if start < 0 || end <= start {
		return nil, &ParseError{Spreadsheet: spreadsheetID, Sheet: sheetName, Reason: "no JSON object in response"}
	}

	var payload gvizResponse
	if err := json.Unmarshal(body[start:end+1], &payload); err != nil {
		return nil, &ParseError{Spreadsheet: spreadsheetID, Sheet: sheetName, Reason: "malformed JSON", Err: err}
	}
	if payload.Table == nil {
		return nil, &ParseError{Spreadsheet: spreadsheetID, Sheet: sheetName, Reason: "missing table"}
	}
	if len(payload.Table.Rows) == 0 {
		return nil, &EmptyError{Spreadsheet: spreadsheetID, Sheet: sheetName}
	}

	rows := make([]Row, 0, len(payload.Table.Rows))
	for _, raw := range payload.Table.Rows {
		row := make(Row, len(raw.C))
		for i, cell := range raw.C {
			row[i] = cellValue(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue falls back from value to formatted string to empty string.
func cellValue(cell *gvizCell) string {
	if cell == nil {
		return ""
	}
	switch v := cell.V.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return cell.F
}

package commitment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"mis/internal/sheets"
)

// Submitter dispatches a write to the spreadsheet script. Satisfied by
// *sheets.Writer.
type Submitter interface {
	Enqueue(fields map[string]string)
}

type Service struct {
	Client *sheets.Client
	Store  Store
	Writer Submitter

	SpreadsheetID string
	RecordsSheet  string

	now func() time.Time
}

func NewService(client *sheets.Client, store Store, writer Submitter, spreadsheetID, recordsSheet string) *Service {
	return &Service{
		Client:        client,
		Store:         store,
		Writer:        writer,
		SpreadsheetID: spreadsheetID,
		RecordsSheet:  recordsSheet,
		now:           time.Now,
	}
}

// NextWeekRange returns the Monday and Sunday of the week after the
// given day, both formatted YYYY-MM-DD. Called on any weekday,
// including Sunday, it lands on the upcoming full week.
func NextWeekRange(today time.Time) (string, string) {
	start := today.AddDate(0, 0, 8-int(today.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

type wirePayload struct {
	Item
	WeekStart   string `json:"weekStart"`
	WeekEnd     string `json:"weekEnd"`
	SubmittedAt string `json:"submittedAt"`
}

// SubmitBatch records commitments for the upcoming week, one entry per
// selected employee. Commitment percentages are clamped to
// [0, MaxValue] before anything is stored or dispatched. The sheet
// write is fire and forget; the local log is the source of truth for
// history until the sheet catches up.
func (s *Service) SubmitBatch(ctx context.Context, userKey string, items []Item) ([]Entry, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no commitments to submit")
	}

	weekStart, weekEnd := NextWeekRange(s.now())
	submittedAt := s.now().Format(time.RFC3339)

	entries := make([]Entry, 0, len(items))
	wire := make([]wirePayload, 0, len(items))
	for _, item := range items {
		item.Commitment = clamp(item.Commitment)
		entry := Entry{
			ID:        uuid.NewString(),
			UserKey:   userKey,
			Item:      item,
			WeekStart: weekStart,
			WeekEnd:   weekEnd,
			CreatedAt: s.now(),
		}
		if err := s.Store.Append(ctx, entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		wire = append(wire, wirePayload{Item: item, WeekStart: weekStart, WeekEnd: weekEnd, SubmittedAt: submittedAt})
	}

	if err := s.Store.DeleteDrafts(ctx, userKey); err != nil {
		slog.Warn("clearing commitment drafts failed", "user", userKey, "error", err)
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	s.Writer.Enqueue(map[string]string{
		"action":    "insertInSingleColumn",
		"sheetId":   s.SpreadsheetID,
		"sheetName": s.RecordsSheet,
		"header":    "Next Week Commitment",
		"data":      string(payload),
		"timestamp": submittedAt,
	})
	return entries, nil
}

// History combines the sheet-reported commitment for one employee with
// the local log. The sheet value wins when the row is present;
// otherwise the newest local entry stands in.
func (s *Service) History(ctx context.Context, userKey, name string) (History, error) {
	entries, err := s.Store.List(ctx, userKey)
	if err != nil {
		return History{}, err
	}

	var filtered []Entry
	for _, e := range entries {
		if name == "" || strings.EqualFold(e.Item.Name, name) {
			filtered = append(filtered, e)
		}
	}

	h := History{Entries: filtered}
	if len(filtered) > 0 {
		var sum int
		for _, e := range filtered {
			sum += e.Item.Commitment
		}
		h.Average = float64(sum) / float64(len(filtered))
	}

	rows, err := s.Client.Fetch(ctx, s.SpreadsheetID, s.RecordsSheet)
	if err != nil {
		slog.Warn("fetching commitment sheet failed", "user", userKey, "error", err)
		if len(filtered) > 0 {
			h.SheetValue = filtered[0].Item.Commitment
		}
		return h, nil
	}

	for _, row := range rows {
		rec := sheets.ParseRecordRow(row)
		if name != "" && strings.EqualFold(rec.Name, name) {
			h.SheetValue = rec.NextWeekCommitment
			h.FromSheet = true
			return h, nil
		}
	}
	if len(filtered) > 0 {
		h.SheetValue = filtered[0].Item.Commitment
	}
	return h, nil
}

// Drafts back the form between visits, keyed by employee ID.
func (s *Service) SaveDrafts(ctx context.Context, userKey string, drafts map[string]int) error {
	for employee, value := range drafts {
		if value < 0 || value > MaxValue {
			return fmt.Errorf("commitment draft for %q out of range: %d", employee, value)
		}
	}
	return s.Store.SaveDrafts(ctx, userKey, drafts)
}

func (s *Service) LoadDrafts(ctx context.Context, userKey string) (map[string]int, error) {
	return s.Store.LoadDrafts(ctx, userKey)
}

// Remove deletes one entry from the local log. The sheet keeps whatever
// it already received.
func (s *Service) Remove(ctx context.Context, userKey, entryID string) error {
	return s.Store.Delete(ctx, userKey, entryID)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

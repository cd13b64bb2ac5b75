package kpikra

import (
	"context"
	"strings"
	"time"

	"mis/internal/sheets"
)

// tableOffset skips the banner rows the KPI sheet carries above the
// task table proper.
const tableOffset = 3

// Query narrows the KPI master rows. Every non-empty field is an exact,
// case-insensitive match. User-scoped callers set Designation only.
type Query struct {
	Designation string
	Department  string
	Name        string
}

// Header is the role block shown above the KPI table, taken from the
// first matching row.
type Header struct {
	ActualRole        string   `json:"actualRole"`
	CommunicationTeam []string `json:"communicationTeam"`
	KeyPerson         string   `json:"keyPerson"`
	HowToCommunicate  string   `json:"howToCommunicate"`
}

// View is the KPI/KRA payload for one designation.
type View struct {
	Header  Header          `json:"header"`
	Systems []string        `json:"systems"`
	Rows    []sheets.KpiRow `json:"rows"`
}

// Submitter dispatches a write to the spreadsheet script. Satisfied by
// *sheets.Writer.
type Submitter interface {
	Enqueue(fields map[string]string)
}

type Service struct {
	Client *sheets.Client
	Writer Submitter
	flight *sheets.Flight

	SpreadsheetID string
	MasterSheet   string

	now func() time.Time
}

func NewService(client *sheets.Client, writer Submitter, spreadsheetID, masterSheet string) *Service {
	return &Service{
		Client:        client,
		Writer:        writer,
		flight:        sheets.NewFlight(),
		SpreadsheetID: spreadsheetID,
		MasterSheet:   masterSheet,
		now:           time.Now,
	}
}

// View fetches the KPI master and applies the query. A newer request
// for the same designation cancels one still in flight.
func (s *Service) View(ctx context.Context, q Query) (View, error) {
	ctx, done := s.flight.Begin(ctx, "kpikra:"+strings.ToLower(q.Designation))
	defer done()

	rows, err := s.Client.Fetch(ctx, s.SpreadsheetID, s.MasterSheet)
	if err != nil {
		return View{}, err
	}

	var matched []sheets.KpiRow
	for _, row := range rows {
		rec := sheets.ParseKpiRow(row)
		if q.Designation != "" && !strings.EqualFold(rec.Designation, q.Designation) {
			continue
		}
		if q.Department != "" && !strings.EqualFold(rec.Department, q.Department) {
			continue
		}
		if q.Name != "" && !strings.EqualFold(rec.Name, q.Name) {
			continue
		}
		matched = append(matched, rec)
	}

	view := View{Systems: distinctSystems(matched)}
	if len(matched) > 0 {
		first := matched[0]
		view.Header = Header{
			ActualRole:        first.ActualRole,
			CommunicationTeam: first.CommunicationTeam,
			KeyPerson:         first.KeyPerson,
			HowToCommunicate:  first.HowToCommunicate,
		}
	}
	if len(matched) > tableOffset {
		view.Rows = matched[tableOffset:]
	}
	return view, nil
}

// SubmitBrief sends a designation brief to the spreadsheet script, fire
// and forget.
func (s *Service) SubmitBrief(ctx context.Context, userName, designation, brief string) error {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return ErrEmptyBrief
	}
	s.Writer.Enqueue(map[string]string{
		"action":      "insertDesignationBrief",
		"sheetId":     s.SpreadsheetID,
		"designation": designation,
		"userName":    userName,
		"brief":       brief,
		"timestamp":   s.now().Format(time.RFC3339),
	})
	return nil
}

func distinctSystems(rows []sheets.KpiRow) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, r := range rows {
		if r.SystemName == "" {
			continue
		}
		key := strings.ToLower(r.SystemName)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r.SystemName)
	}
	return out
}

package report

import (
	"context"

	"mis/internal/sheets"
)

type Service struct {
	Client *sheets.Client

	SpreadsheetID   string
	DataSheet       string
	ChartServiceURL string
}

func NewService(client *sheets.Client, spreadsheetID, dataSheet, chartServiceURL string) *Service {
	return &Service{
		Client:          client,
		SpreadsheetID:   spreadsheetID,
		DataSheet:       dataSheet,
		ChartServiceURL: chartServiceURL,
	}
}

// Rows fetches the Data sheet and applies the criteria.
func (s *Service) Rows(ctx context.Context, c Criteria) ([]sheets.TaskRow, error) {
	rows, err := s.Client.Fetch(ctx, s.SpreadsheetID, s.DataSheet)
	if err != nil {
		return nil, err
	}
	tasks := make([]sheets.TaskRow, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, sheets.ParseTaskRow(row))
	}
	return Filter(tasks, c), nil
}

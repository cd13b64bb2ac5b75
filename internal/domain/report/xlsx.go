package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mis/internal/sheets"
)

// WriteXLSX renders the filtered rows as a workbook with a Report sheet
// and a Summary sheet.
func (s *Service) WriteXLSX(w io.Writer, tasks []sheets.TaskRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"FMS", "Department", "Task", "Person", "Target", "Achievement", "Work Done %", "On Time %", "Pending", "Start", "End"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, task := range tasks {
		values := []any{
			task.FMSName, task.Department, task.TaskName, task.PersonName,
			task.Target, task.TotalAchievement, task.WorkDonePct, task.WorkDoneOnTimePct,
			task.AllPendingTillDate, task.StartDate, task.EndDate,
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	summary := Summarize(tasks)
	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	lines := [][2]any{
		{"Rows", summary.Rows},
		{"Total Target", summary.TotalTarget},
		{"Total Achievement", summary.TotalAchievement},
		{"Average Work Done %", summary.AverageWorkDone},
		{"Total Pending", summary.TotalPending},
	}
	for i, line := range lines {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), line[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), line[1]); err != nil {
			return err
		}
	}

	return f.Write(w)
}

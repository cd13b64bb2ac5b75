package report

import (
	"strings"
	"time"

	"mis/internal/sheets"
)

// Criteria narrows the task rows included in a report. Name, Department
// and FMS are exact matches (case-insensitive); empty string means no
// filter. Dates bound the row's start date when set.
type Criteria struct {
	Name       string
	Department string
	FMS        string
	From       time.Time
	To         time.Time
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "1/2/2006", "2006/01/02"}

func parseSheetDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Filter keeps rows that carry an FMS name and a task name and satisfy
// every set criterion. A date filter excludes rows whose start date
// cannot be parsed.
func Filter(tasks []sheets.TaskRow, c Criteria) []sheets.TaskRow {
	var out []sheets.TaskRow
	for _, task := range tasks {
		if task.FMSName == "" || task.TaskName == "" {
			continue
		}
		if c.Name != "" && !strings.EqualFold(task.PersonName, c.Name) {
			continue
		}
		if c.Department != "" && !strings.EqualFold(task.Department, c.Department) {
			continue
		}
		if c.FMS != "" && !strings.EqualFold(task.FMSName, c.FMS) {
			continue
		}
		if !c.From.IsZero() || !c.To.IsZero() {
			start, ok := parseSheetDate(task.StartDate)
			if !ok {
				continue
			}
			if !c.From.IsZero() && start.Before(c.From) {
				continue
			}
			if !c.To.IsZero() && start.After(c.To) {
				continue
			}
		}
		out = append(out, task)
	}
	return out
}

// Summary aggregates a filtered row set for the report header.
type Summary struct {
	Rows             int
	TotalTarget      int
	TotalAchievement int
	AverageWorkDone  int
	TotalPending     int
}

func Summarize(tasks []sheets.TaskRow) Summary {
	s := Summary{Rows: len(tasks)}
	if len(tasks) == 0 {
		return s
	}
	var workDoneSum int
	for _, t := range tasks {
		s.TotalTarget += t.Target
		s.TotalAchievement += t.TotalAchievement
		s.TotalPending += t.AllPendingTillDate
		workDoneSum += t.WorkDonePct
	}
	s.AverageWorkDone = workDoneSum / len(tasks)
	return s
}

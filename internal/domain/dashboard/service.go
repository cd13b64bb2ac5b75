package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"mis/internal/sheets"
)

const rankingSize = 5

// Service aggregates Data-sheet rows into the dashboard views. Fetches go
// through a Flight tracker keyed per view and caller, so a newer request
// supersedes only its own stale predecessor, never another caller's.
type Service struct {
	Client        *sheets.Client
	Flight        *sheets.Flight
	Store         *Store
	SpreadsheetID string
	DataSheet     string
	RecordsSheet  string
}

func NewService(client *sheets.Client, store *Store, spreadsheetID, dataSheet, recordsSheet string) *Service {
	return &Service{
		Client:        client,
		Flight:        sheets.NewFlight(),
		Store:         store,
		SpreadsheetID: spreadsheetID,
		DataSheet:     dataSheet,
		RecordsSheet:  recordsSheet,
	}
}

func (s *Service) fetchTasks(ctx context.Context, view, scope string) ([]sheets.TaskRow, error) {
	ctx, done := s.Flight.Begin(ctx, view+":"+strings.ToLower(scope))
	defer done()

	rows, err := s.Client.Fetch(ctx, s.SpreadsheetID, s.DataSheet)
	if err != nil {
		return nil, err
	}
	tasks := make([]sheets.TaskRow, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, sheets.ParseTaskRow(row))
	}
	return tasks, nil
}

// Overview builds the admin dashboard. The designation keys the durable
// cache so a stale selection can be invalidated independently.
func (s *Service) Overview(ctx context.Context, designation string, f Filters) (Overview, error) {
	tasks, err := s.fetchTasks(ctx, "dashboard", designation)
	if err != nil {
		return Overview{}, err
	}

	employees := make([]Employee, 0, len(tasks))
	for _, task := range tasks {
		employees = append(employees, BuildEmployee(task))
	}

	filtered := FilterExact(employees, func(e Employee) bool {
		if f.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Name)) {
			return false
		}
		if f.Department != "" && e.Department != f.Department {
			return false
		}
		if f.FMS != "" && e.FMSName != f.FMS {
			return false
		}
		return true
	})

	overview := Overview{
		Employees:        filtered,
		DepartmentScores: s.departmentScores(tasks, f.FMS, f.Department),
		TopScorers:       TopN(filtered, func(e Employee) int { return e.WeeklyWorkDone }, rankingSize, true),
		LowestScorers:    TopN(filtered, func(e Employee) int { return e.WeeklyWorkDone }, rankingSize, false),
		MostPending:      TopN(filtered, func(e Employee) int { return e.AllPendingTillDate }, rankingSize, true),
		Departments:      distinct(employees, func(e Employee) string { return e.Department }),
		Names:            distinct(employees, func(e Employee) string { return e.Name }),
		FMSNames:         distinct(employees, func(e Employee) string { return e.FMSName }),
	}

	if designation != "" {
		s.cacheOverview(ctx, designation, overview)
	}
	return overview, nil
}

// CachedOverview returns the last aggregated payload for a designation, or
// nil when none is stored; used as the offline fallback when a fetch fails.
func (s *Service) CachedOverview(ctx context.Context, designation string) (*Overview, error) {
	if s.Store == nil {
		return nil, nil
	}
	payload, err := s.Store.LoadCache(ctx, designation)
	if err != nil || payload == nil {
		return nil, err
	}
	var overview Overview
	if err := json.Unmarshal(payload, &overview); err != nil {
		// Corrupt cache entries are discarded, not surfaced.
		_ = s.Store.ClearCache(ctx, designation)
		return nil, nil
	}
	return &overview, nil
}

func (s *Service) cacheOverview(ctx context.Context, designation string, overview Overview) {
	if s.Store == nil {
		return
	}
	payload, err := json.Marshal(overview)
	if err != nil {
		return
	}
	if err := s.Store.SaveCache(ctx, designation, payload); err != nil {
		slog.Warn("dashboard cache save failed", "designation", designation, "err", err)
	}
}

// departmentScores aggregates achievement/target by department, optionally
// restricted by FMS and department filters, sorted highest first.
func (s *Service) departmentScores(tasks []sheets.TaskRow, fms, department string) []GroupScore {
	source := FilterExact(tasks, func(t sheets.TaskRow) bool {
		return fms == "" || strings.TrimSpace(t.FMSName) == fms
	})
	scores := AggregateByGroup(source,
		func(t sheets.TaskRow) string {
			if d := strings.TrimSpace(t.Department); d != "" {
				return d
			}
			return "Unassigned"
		},
		func(t sheets.TaskRow) int { return t.Target },
		func(t sheets.TaskRow) int { return t.TotalAchievement },
	)
	if department != "" {
		scores = FilterExact(scores, func(g GroupScore) bool { return g.Subject == department })
	}
	return SortByScoreDesc(scores)
}

// TodayTasks lists Data rows that name both a person and a task and carry a
// positive today count. The total sums only the rows that survive filtering.
func (s *Service) TodayTasks(ctx context.Context, viewer string, f Filters) (TodaySummary, error) {
	tasks, err := s.fetchTasks(ctx, "today", viewer)
	if err != nil {
		return TodaySummary{}, err
	}

	rows := make([]Employee, 0, len(tasks))
	for _, task := range tasks {
		if task.PersonName == "" || task.TaskName == "" || task.TodayTask <= 0 {
			continue
		}
		rows = append(rows, BuildEmployee(task))
	}
	rows = FilterExact(rows, func(e Employee) bool {
		if f.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Name)) {
			return false
		}
		if f.FMS != "" && e.FMSName != f.FMS {
			return false
		}
		return true
	})

	summary := TodaySummary{Tasks: rows}
	summary.DistinctFMS = len(distinct(rows, func(e Employee) string { return e.FMSName }))
	summary.DistinctTasks = len(distinct(rows, func(e Employee) string { return e.TaskName }))
	for _, row := range rows {
		summary.TodayTaskTotal += row.TodayTask
	}
	return summary, nil
}

// PendingTasks ranks rows with outstanding work, most pending first.
func (s *Service) PendingTasks(ctx context.Context, viewer string, f Filters) ([]Employee, error) {
	tasks, err := s.fetchTasks(ctx, "pending", viewer)
	if err != nil {
		return nil, err
	}
	rows := make([]Employee, 0, len(tasks))
	for _, task := range tasks {
		if task.AllPendingTillDate <= 0 {
			continue
		}
		rows = append(rows, BuildEmployee(task))
	}
	rows = FilterExact(rows, func(e Employee) bool {
		if f.Department != "" && e.Department != f.Department {
			return false
		}
		if f.FMS != "" && e.FMSName != f.FMS {
			return false
		}
		return true
	})
	return TopN(rows, func(e Employee) int { return e.AllPendingTillDate }, -1, true), nil
}

// UserDashboard builds the per-user view from the For Records row matching
// the user's name.
func (s *Service) UserDashboard(ctx context.Context, name string) (UserOverview, error) {
	ctx, done := s.Flight.Begin(ctx, "user:"+strings.ToLower(name))
	defer done()

	rows, err := s.Client.Fetch(ctx, s.SpreadsheetID, s.RecordsSheet)
	if err != nil {
		return UserOverview{}, err
	}

	for _, row := range rows {
		rec := sheets.ParseRecordRow(row)
		if !strings.EqualFold(strings.TrimSpace(rec.Name), strings.TrimSpace(name)) {
			continue
		}
		target := sheets.ParseLooseInt(rec.Target)
		actual := sheets.ParseLooseInt(rec.ActualWorkDone)
		return UserOverview{
			Name:                   rec.Name,
			Target:                 rec.Target,
			ActualWorkDone:         rec.ActualWorkDone,
			WorkNotDone:            rec.WorkNotDone,
			WorkNotDoneOnTime:      rec.WorkNotDoneOnTime,
			TotalWorkDone:          rec.TotalWorkDone,
			WeekPending:            rec.WeekPending,
			AllPendingTillDate:     rec.AllPendingTillDate,
			PlannedWorkNotDone:     rec.PlannedWorkNotDone,
			PlannedNotDoneTillDate: rec.PlannedNotDoneTillDate,
			CompletionPct:          PercentScore(actual, target),
		}, nil
	}
	return UserOverview{Name: name}, nil
}

func distinct[T any](rows []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		k := key(row)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

package dashboard

import (
	"strings"

	"mis/internal/sheets"
)

// Employee is one Data-sheet row shaped for the admin dashboard.
type Employee struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Department               string `json:"department"`
	Image                    string `json:"image,omitempty"`
	Target                   int    `json:"target"`
	ActualWorkDone           int    `json:"actualWorkDone"`
	WeeklyWorkDone           int    `json:"weeklyWorkDone"`
	WeeklyWorkDoneOnTime     int    `json:"weeklyWorkDoneOnTime"`
	TotalWorkDone            int    `json:"totalWorkDone"`
	WeekPending              int    `json:"weekPending"`
	AllPendingTillDate       int    `json:"allPendingTillDate"`
	TodayTask                int    `json:"todayTask"`
	PlannedWorkNotDone       int    `json:"plannedWorkNotDone"`
	PlannedWorkNotDoneOnTime int    `json:"plannedWorkNotDoneOnTime"`
	Commitment               int    `json:"commitment"`
	Score                    int    `json:"score"`
	GmailID                  string `json:"gmailId,omitempty"`
	FMSName                  string `json:"fmsName,omitempty"`
	TaskName                 string `json:"taskName,omitempty"`
	SystemType               string `json:"systemType,omitempty"`
	SheetKey                 string `json:"sheetKey,omitempty"`
	StartDate                string `json:"startDate,omitempty"`
	EndDate                  string `json:"endDate,omitempty"`
}

// Filters drive the admin dashboard view. Empty string means "no filter".
// Name matches by case-insensitive substring here; the report view uses
// exact matching instead.
type Filters struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	FMS        string `json:"fms"`
}

// Overview is the fully aggregated admin dashboard payload.
type Overview struct {
	Employees        []Employee   `json:"employees"`
	DepartmentScores []GroupScore `json:"departmentScores"`
	TopScorers       []Employee   `json:"topScorers"`
	LowestScorers    []Employee   `json:"lowestScorers"`
	MostPending      []Employee   `json:"mostPending"`
	Departments      []string     `json:"departments"`
	Names            []string     `json:"names"`
	FMSNames         []string     `json:"fmsNames"`
}

// TodaySummary describes the today-tasks view.
type TodaySummary struct {
	Tasks          []Employee `json:"tasks"`
	DistinctFMS    int        `json:"distinctFms"`
	DistinctTasks  int        `json:"distinctTasks"`
	TodayTaskTotal int        `json:"todayTaskTotal"`
}

// UserOverview is the per-user dashboard built from the For Records row.
type UserOverview struct {
	Name                   string `json:"name"`
	Target                 string `json:"target"`
	ActualWorkDone         string `json:"actualWorkDone"`
	WorkNotDone            string `json:"workNotDone"`
	WorkNotDoneOnTime      string `json:"workNotDoneOnTime"`
	TotalWorkDone          string `json:"totalWorkDone"`
	WeekPending            string `json:"weekPending"`
	AllPendingTillDate     string `json:"allPendingTillDate"`
	PlannedWorkNotDone     string `json:"plannedWorkNotDone"`
	PlannedNotDoneTillDate string `json:"plannedNotDoneTillDate"`
	CompletionPct          int    `json:"completionPct"`
}

func BuildEmployee(task sheets.TaskRow) Employee {
	id := task.EmployeeID
	if id == "" {
		id = task.PersonName
	}
	name := task.PersonName
	if name == "" {
		name = "Unknown"
	}
	department := task.Department
	if department == "" {
		department = "Unassigned"
	}
	return Employee{
		ID:                       id,
		Name:                     name,
		Department:               department,
		Image:                    firstHTTPSegment(task.LinkWithName),
		Target:                   task.Target,
		ActualWorkDone:           task.ActualAchievement,
		WeeklyWorkDone:           task.WorkDonePct,
		WeeklyWorkDoneOnTime:     task.WorkDoneOnTimePct,
		TotalWorkDone:            task.TotalAchievement,
		WeekPending:              task.WeekPendingTask,
		AllPendingTillDate:       task.AllPendingTillDate,
		TodayTask:                task.TodayTask,
		PlannedWorkNotDone:       nonNegative(100 - task.WorkDonePct),
		PlannedWorkNotDoneOnTime: nonNegative(100 - task.WorkDoneOnTimePct),
		Commitment:               task.NextWeekCommitment,
		Score:                    WeightedScore(task.WorkDonePct, task.WorkDoneOnTimePct, task.ActualAchievement),
		GmailID:                  task.GmailID,
		FMSName:                  task.FMSName,
		TaskName:                 task.TaskName,
		SystemType:               task.SystemType,
		SheetKey:                 task.SheetKey,
		StartDate:                task.StartDate,
		EndDate:                  task.EndDate,
	}
}

// firstHTTPSegment pulls the first http URL out of the "Link With Name"
// cell, which holds comma-joined link/name pairs.
func firstHTTPSegment(cell string) string {
	for _, part := range strings.Split(cell, ",") {
		trimmed := strings.TrimSpace(part)
		if strings.HasPrefix(trimmed, "http") {
			return trimmed
		}
	}
	return ""
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

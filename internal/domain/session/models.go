package session

import "strings"

// PerformanceSnapshot carries the caller-facing slice of a For Records
// row at login time. Values stay as the sheet reported them.
type PerformanceSnapshot struct {
	Target             string `json:"target"`
	ActualWorkDone     string `json:"actual_work_done"`
	WorkNotDone        string `json:"work_not_done"`
	WorkNotDoneOnTime  string `json:"work_not_done_on_time"`
	TotalWorkDone      string `json:"total_work_done"`
	WeekPending        string `json:"week_pending"`
	AllPendingTillDate string `json:"all_pending_till_date"`
	PlannedNotDone     string `json:"planned_not_done"`
	PlannedNotDoneTill string `json:"planned_not_done_till"`
	NextWeekCommitment int    `json:"next_week_commitment"`
}

// User is the unit of session persistence. Every mutation re-saves the
// whole record.
type User struct {
	Username     string               `json:"username"`
	Name         string               `json:"name"`
	Email        string               `json:"email,omitempty"`
	Role         string               `json:"role"`
	Department   string               `json:"department"`
	Designation  string               `json:"designation"`
	Designations []string             `json:"designations"`
	Image        string               `json:"image,omitempty"`
	ImageRaw     string               `json:"image_raw,omitempty"`
	Performance  *PerformanceSnapshot `json:"performance,omitempty"`
}

func (u *User) Key() string {
	return strings.ToLower(strings.TrimSpace(u.Username))
}

func (u *User) IsAdmin() bool {
	return strings.EqualFold(u.Role, "admin")
}

func (u *User) HasDesignation(name string) bool {
	for _, d := range u.Designations {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

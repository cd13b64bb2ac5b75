package commitment

import "time"

// MaxValue is the ceiling for a weekly commitment percentage.
const MaxValue = 100

// Item is one employee's commitment as entered on the form.
type Item struct {
	EmployeeID               string `json:"employeeId"`
	Name                     string `json:"name"`
	Department               string `json:"department"`
	Target                   int    `json:"target"`
	Commitment               int    `json:"commitment"`
	PlannedWorkNotDone       int    `json:"plannedWorkNotDone"`
	PlannedWorkNotDoneOnTime int    `json:"plannedWorkNotDoneOnTime"`
}

// Entry is one logged commitment for an upcoming week.
type Entry struct {
	ID        string    `json:"id"`
	UserKey   string    `json:"user_key"`
	Item      Item      `json:"item"`
	WeekStart string    `json:"week_start"`
	WeekEnd   string    `json:"week_end"`
	CreatedAt time.Time `json:"created_at"`
}

// History is the commitment view for one employee. SheetValue is what
// the For Records sheet currently reports; Entries is the locally kept
// submission log, newest first.
type History struct {
	SheetValue int     `json:"sheet_value"`
	FromSheet  bool    `json:"from_sheet"`
	Entries    []Entry `json:"entries"`
	Average    float64 `json:"average"`
}

package sheets

import "strings"

// Column maps for each known sheet layout. The gviz endpoint exposes no
// headers worth trusting, so every sheet's positions are maintained here by
// hand; a layout change in the spreadsheet means a change here.

// Credentials spreadsheet, "Master" sheet.
const (
	masterColName         = 0
	masterColDepartment   = 2
	masterColPassword     = 3
	masterColRole         = 4
	masterColDesignations = 5
)

// KPI spreadsheet, "For Records" sheet.
const (
	recordColName               = 2
	recordColTarget             = 3
	recordColActualWorkDone     = 4
	recordColWorkNotDone        = 5
	recordColWorkNotDoneOnTime  = 6
	recordColTotalWorkDone      = 7
	recordColWeekPending        = 8
	recordColAllPendingTillDate = 9
	recordColPlannedNotDone     = 10
	recordColPlannedNotDoneTill = 11
	recordColImage              = 13
	recordColNextWeekCommitment = 14
)

// KPI spreadsheet, "Master" sheet (role/system briefing rows).
const (
	kpiColDesignation       = 0
	kpiColDepartment        = 1
	kpiColName              = 2
	kpiColSystemName        = 3
	kpiColTaskName          = 4
	kpiColDescription       = 5
	kpiColDBLink            = 6
	kpiColTrainingLink      = 7
	kpiColActualRole        = 10
	kpiColCommunicationTeam = 11
	kpiColKeyPerson         = 12
	kpiColHowToCommunicate  = 13
)

// KPI spreadsheet, "Data" sheet (per-person task metrics).
const (
	dataColFMSName            = 0
	dataColDepartment         = 1
	dataColTaskName           = 2
	dataColPersonName         = 3
	dataColEmployeeID         = 4
	dataColGmailID            = 5
	dataColSystemType         = 6
	dataColSheetKey           = 7
	dataColTarget             = 8
	dataColActualAchievement  = 9
	dataColTotalAchievement   = 10
	dataColLinkWithName       = 11
	dataColWorkDonePct        = 12
	dataColWorkDoneOnTimePct  = 13
	dataColNextWeekCommitment = 14
	dataColAllPendingTillDate = 15
	dataColWeekPendingTask    = 16
	dataColTodayTask          = 17
	dataColStartDate          = 21
	dataColEndDate            = 22
)

// MasterRecord is one credentials row.
type MasterRecord struct {
	Name         string
	Department   string
	Password     string
	Role         string
	Designations []string
}

func ParseMasterRecord(r Row) MasterRecord {
	return MasterRecord{
		Name:         r.Str(masterColName),
		Department:   r.Str(masterColDepartment),
		Password:     r.Str(masterColPassword),
		Role:         strings.ToLower(r.Str(masterColRole)),
		Designations: splitCSV(r.Str(masterColDesignations)),
	}
}

// RecordRow is one "For Records" row. Performance fields stay as display
// strings; consumers parse them with the loose-integer policy when needed.
type RecordRow struct {
	Name                   string
	Target                 string
	ActualWorkDone         string
	WorkNotDone            string
	WorkNotDoneOnTime      string
	TotalWorkDone          string
	WeekPending            string
	AllPendingTillDate     string
	PlannedWorkNotDone     string
	PlannedNotDoneTillDate string
	ImageRaw               string
	NextWeekCommitment     int
}

func ParseRecordRow(r Row) RecordRow {
	return RecordRow{
		Name:                   r.Str(recordColName),
		Target:                 r.Str(recordColTarget),
		ActualWorkDone:         r.Str(recordColActualWorkDone),
		WorkNotDone:            r.Str(recordColWorkNotDone),
		WorkNotDoneOnTime:      r.Str(recordColWorkNotDoneOnTime),
		TotalWorkDone:          r.Str(recordColTotalWorkDone),
		WeekPending:            r.Str(recordColWeekPending),
		AllPendingTillDate:     r.Str(recordColAllPendingTillDate),
		PlannedWorkNotDone:     r.Str(recordColPlannedNotDone),
		PlannedNotDoneTillDate: r.Str(recordColPlannedNotDoneTill),
		ImageRaw:               r.Str(recordColImage),
		NextWeekCommitment:     r.Int(recordColNextWeekCommitment),
	}
}

// KpiRow is one KPI "Master" row.
type KpiRow struct {
	Designation       string
	Department        string
	Name              string
	SystemName        string
	TaskName          string
	Description       string
	DBLink            string
	TrainingLink      string
	ActualRole        string
	CommunicationTeam []string
	KeyPerson         string
	HowToCommunicate  string
}

func ParseKpiRow(r Row) KpiRow {
	return KpiRow{
		Designation:       r.Str(kpiColDesignation),
		Department:        r.Str(kpiColDepartment),
		Name:              r.Str(kpiColName),
		SystemName:        r.Str(kpiColSystemName),
		TaskName:          r.Str(kpiColTaskName),
		Description:       r.Str(kpiColDescription),
		DBLink:            r.Str(kpiColDBLink),
		TrainingLink:      r.Str(kpiColTrainingLink),
		ActualRole:        r.Str(kpiColActualRole),
		CommunicationTeam: splitCSV(r.Str(kpiColCommunicationTeam)),
		KeyPerson:         r.Str(kpiColKeyPerson),
		HowToCommunicate:  r.Str(kpiColHowToCommunicate),
	}
}

// TaskRow is one "Data" row.
type TaskRow struct {
	FMSName            string
	Department         string
	TaskName           string
	PersonName         string
	EmployeeID         string
	GmailID            string
	SystemType         string
	SheetKey           string
	Target             int
	ActualAchievement  int
	TotalAchievement   int
	LinkWithName       string
	WorkDonePct        int
	WorkDoneOnTimePct  int
	NextWeekCommitment int
	AllPendingTillDate int
	WeekPendingTask    int
	TodayTask          int
	StartDate          string
	EndDate            string
}

func ParseTaskRow(r Row) TaskRow {
	return TaskRow{
		FMSName:            r.Str(dataColFMSName),
		Department:         r.Str(dataColDepartment),
		TaskName:           r.Str(dataColTaskName),
		PersonName:         r.Str(dataColPersonName),
		EmployeeID:         r.Str(dataColEmployeeID),
		GmailID:            r.Str(dataColGmailID),
		SystemType:         r.Str(dataColSystemType),
		SheetKey:           r.Str(dataColSheetKey),
		Target:             r.Int(dataColTarget),
		ActualAchievement:  r.Int(dataColActualAchievement),
		TotalAchievement:   r.Int(dataColTotalAchievement),
		LinkWithName:       r.Str(dataColLinkWithName),
		WorkDonePct:        r.Int(dataColWorkDonePct),
		WorkDoneOnTimePct:  r.Int(dataColWorkDoneOnTimePct),
		NextWeekCommitment: r.Int(dataColNextWeekCommitment),
		AllPendingTillDate: r.Int(dataColAllPendingTillDate),
		WeekPendingTask:    r.Int(dataColWeekPendingTask),
		TodayTask:          r.Int(dataColTodayTask),
		StartDate:          r.Str(dataColStartDate),
		EndDate:            r.Str(dataColEndDate),
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

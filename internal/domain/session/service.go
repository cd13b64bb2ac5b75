package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"mis/internal/avatar"
	"mis/internal/domain/auth"
	"mis/internal/sheets"
)

type Service struct {
	Client   *sheets.Client
	Store    Store
	Selector *Selector

	AuthSpreadsheetID string
	AuthMasterSheet   string
	KpiSpreadsheetID  string
	RecordsSheet      string
}

func NewService(client *sheets.Client, store Store, selector *Selector, authSheetID, authMaster, kpiSheetID, recordsSheet string) *Service {
	return &Service{
		Client:            client,
		Store:             store,
		Selector:          selector,
		AuthSpreadsheetID: authSheetID,
		AuthMasterSheet:   authMaster,
		KpiSpreadsheetID:  kpiSheetID,
		RecordsSheet:      recordsSheet,
	}
}

// Login authenticates against the credentials sheet, enriches the user
// with their For Records snapshot and profile image, resolves the
// active designation, and persists the whole record.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password"}
	}

	rows, err := s.Client.Fetch(ctx, s.AuthSpreadsheetID, s.AuthMasterSheet)
	if err != nil {
		return nil, err
	}

	var matched *sheets.MasterRecord
	for _, row := range rows {
		rec := sheets.ParseMasterRecord(row)
		if strings.EqualFold(rec.Name, username) && auth.CheckSheetPassword(rec.Password, password) {
			matched = &rec
			break
		}
	}
	if matched == nil {
		return nil, ErrInvalidCredentials
	}

	role := matched.Role
	if role == "" {
		role = "user"
	}
	user := &User{
		Username:     matched.Name,
		Name:         matched.Name,
		Role:         role,
		Department:   matched.Department,
		Designations: matched.Designations,
	}

	s.enrichFromRecords(ctx, user)

	if _, err := s.Selector.SelectActive(ctx, user); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Restore rehydrates a persisted session. A record that fails to decode
// is removed and reported as a CorruptSessionError so the caller can
// fall back to a fresh login.
func (s *Service) Restore(ctx context.Context, userKey string) (*User, error) {
	record, err := s.Store.LoadUser(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNoSession
	}

	var user User
	if err := json.Unmarshal(record, &user); err != nil {
		if delErr := s.Store.DeleteUser(ctx, userKey); delErr != nil {
			slog.Warn("removing corrupt session record failed", "user", userKey, "error", delErr)
		}
		return nil, &CorruptSessionError{UserKey: userKey, Err: err}
	}

	// Re-resolve the profile image from the stored raw cell, then refresh
	// the whole For Records snapshot; the stored copy dates from the last
	// login and the sheet may have moved on since.
	if candidates := avatar.Resolve(user.ImageRaw); len(candidates) > 0 {
		user.Image = candidates[0]
	} else {
		user.Image = ""
	}
	s.enrichFromRecords(ctx, &user)

	if _, err := s.Selector.SelectActive(ctx, &user); err != nil {
		return nil, err
	}
	if err := s.save(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Current loads the persisted record without the restore side effects.
// Handlers use it to resolve the acting user per request.
func (s *Service) Current(ctx context.Context, userKey string) (*User, error) {
	record, err := s.Store.LoadUser(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNoSession
	}
	var user User
	if err := json.Unmarshal(record, &user); err != nil {
		return nil, &CorruptSessionError{UserKey: userKey, Err: err}
	}
	return &user, nil
}

// Logout discards the session record and the designation selection.
func (s *Service) Logout(ctx context.Context, userKey string) error {
	if err := s.Store.DeleteUser(ctx, userKey); err != nil {
		return err
	}
	return s.Store.DeleteSelection(ctx, userKey)
}

// ChangeDesignation switches the active designation and re-persists the
// record.
func (s *Service) ChangeDesignation(ctx context.Context, user *User, designation string) error {
	if err := s.Selector.Change(ctx, user, designation); err != nil {
		return err
	}
	return s.save(ctx, user)
}

func (s *Service) save(ctx context.Context, user *User) error {
	record, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Store.SaveUser(ctx, user.Key(), record)
}

// enrichFromRecords is best effort. The For Records sheet being down
// must not block a login.
func (s *Service) enrichFromRecords(ctx context.Context, user *User) {
	rows, err := s.Client.Fetch(ctx, s.KpiSpreadsheetID, s.RecordsSheet)
	if err != nil {
		slog.Warn("fetching performance records failed", "user", user.Key(), "error", err)
		return
	}
	for _, row := range rows {
		rec := sheets.ParseRecordRow(row)
		if !strings.EqualFold(rec.Name, user.Name) {
			continue
		}
		user.ImageRaw = rec.ImageRaw
		if candidates := avatar.Resolve(rec.ImageRaw); len(candidates) > 0 {
			user.Image = candidates[0]
		}
		user.Performance = &PerformanceSnapshot{
			Target:             rec.Target,
			ActualWorkDone:     rec.ActualWorkDone,
			WorkNotDone:        rec.WorkNotDone,
			WorkNotDoneOnTime:  rec.WorkNotDoneOnTime,
			TotalWorkDone:      rec.TotalWorkDone,
			WeekPending:        rec.WeekPending,
			AllPendingTillDate: rec.AllPendingTillDate,
			PlannedNotDone:     rec.PlannedWorkNotDone,
			PlannedNotDoneTill: rec.PlannedNotDoneTillDate,
			NextWeekCommitment: rec.NextWeekCommitment,
		}
		return
	}
}

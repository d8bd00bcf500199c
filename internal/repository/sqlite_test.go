package store

import (
	"context"
	"testing"
	"time"

	"github.com/pracare/backend/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func createTestUser(t *testing.T, s *SQLiteStore, id string, userType domain.UserType) *domain.User {
	t.Helper()
	user := &domain.User{
		UserID:    id,
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		UserType:  userType,
		Token:     "token-" + id,
		CreatedAt: time.Now(),
	}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestSQLiteStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTestUser(t, store, "u1", domain.UserTypePatient)

	got, err := store.GetUserByToken(ctx, "token-u1")
	if err != nil {
		t.Fatalf("GetUserByToken failed: %v", err)
	}
	if got == nil || got.UserID != "u1" || got.UserType != domain.UserTypePatient {
		t.Fatalf("unexpected user: %+v", got)
	}

	missing, err := store.GetUserByToken(ctx, "nope")
	if err != nil {
		t.Fatalf("GetUserByToken failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown token, got %+v", missing)
	}
}

func TestSQLiteStoreSessionOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTestUser(t, store, "u1", domain.UserTypePatient)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"s1", "s2", "s3"} {
		session := &domain.Session{
			SessionID: id,
			UserID:    "u1",
			Title:     "session " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
			IsActive:  true,
		}
		if err := store.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	// s1 becomes the most recently active.
	if err := store.TouchSession(ctx, "s1", time.Now()); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}

	sessions, err := store.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != "s1" {
		t.Fatalf("expected s1 first, got %s", sessions[0].SessionID)
	}

	count, err := store.CountSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("CountSessions failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}

func TestSQLiteStoreMessagesAscending(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTestUser(t, store, "u1", domain.UserTypePatient)
	session := &domain.Session{SessionID: "s1", UserID: "u1", CreatedAt: time.Now(), UpdatedAt: time.Now(), IsActive: true}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	base := time.Now().Add(-time.Minute)
	for i, content := range []string{"first", "second", "third"} {
		msg := &domain.Message{
			MessageID: "m" + content,
			SessionID: "s1",
			Role:      domain.RoleUser,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	messages, err := store.GetMessages(ctx, "s1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Fatalf("messages out of order: %+v", messages)
		}
	}
	if messages[0].Content != "first" || messages[2].Content != "third" {
		t.Fatalf("unexpected ordering: %+v", messages)
	}

	count, err := store.CountMessages(ctx, "s1")
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}

func TestSQLiteStoreReportUniquePerSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTestUser(t, store, "u1", domain.UserTypePatient)
	session := &domain.Session{SessionID: "s1", UserID: "u1", Title: "anxiety chat", CreatedAt: time.Now(), UpdatedAt: time.Now(), IsActive: true}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	report := &domain.Report{
		ReportID:          "r1",
		PatientID:         "u1",
		SessionID:         "s1",
		MoodIndicators:    []string{"anxious"},
		KeyConcerns:       []string{"sleep"},
		CopingMechanisms:  []string{},
		RiskFactors:       []string{},
		AIRecommendations: []string{"therapy"},
		SessionSummary:    "brief",
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := store.CreateReport(ctx, report); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	dup := *report
	dup.ReportID = "r2"
	err := store.CreateReport(ctx, &dup)
	if err == nil {
		t.Fatalf("expected unique violation for second report on session")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	got, err := store.GetReportBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetReportBySession failed: %v", err)
	}
	if got == nil || got.ReportID != "r1" {
		t.Fatalf("unexpected report: %+v", got)
	}
	if got.Patient == nil || got.Patient.Email != "u1@example.com" {
		t.Fatalf("expected patient profile, got %+v", got.Patient)
	}
	if got.SessionTitle != "anxiety chat" {
		t.Fatalf("expected session title, got %q", got.SessionTitle)
	}
	if len(got.MoodIndicators) != 1 || got.MoodIndicators[0] != "anxious" {
		t.Fatalf("unexpected mood indicators: %+v", got.MoodIndicators)
	}
	if got.Doctor != nil {
		t.Fatalf("expected no doctor before review, got %+v", got.Doctor)
	}
}

func TestSQLiteStoreReportReview(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTestUser(t, store, "u1", domain.UserTypePatient)
	createTestUser(t, store, "d1", domain.UserTypeDoctor)
	session := &domain.Session{SessionID: "s1", UserID: "u1", CreatedAt: time.Now(), UpdatedAt: time.Now(), IsActive: true}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	report := &domain.Report{
		ReportID:          "r1",
		PatientID:         "u1",
		SessionID:         "s1",
		MoodIndicators:    []string{},
		KeyConcerns:       []string{},
		CopingMechanisms:  []string{},
		RiskFactors:       []string{},
		AIRecommendations: []string{},
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := store.CreateReport(ctx, report); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	followUp := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	report.DoctorID = "d1"
	report.DoctorNotes = "stable"
	report.FollowUpRequired = true
	report.FollowUpDate = &followUp
	report.UpdatedAt = time.Now()
	if err := store.UpdateReportReview(ctx, report); err != nil {
		t.Fatalf("UpdateReportReview failed: %v", err)
	}

	got, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got == nil || got.DoctorID != "d1" || got.DoctorNotes != "stable" {
		t.Fatalf("unexpected report: %+v", got)
	}
	if got.Doctor == nil || got.Doctor.UserType != domain.UserTypeDoctor {
		t.Fatalf("expected doctor profile, got %+v", got.Doctor)
	}
	if got.FollowUpDate == nil || !got.FollowUpDate.Equal(followUp) {
		t.Fatalf("unexpected follow-up date: %v", got.FollowUpDate)
	}

	// Clearing the flag clears the date.
	report.FollowUpRequired = false
	report.FollowUpDate = nil
	if err := store.UpdateReportReview(ctx, report); err != nil {
		t.Fatalf("UpdateReportReview failed: %v", err)
	}
	got, err = store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.FollowUpRequired || got.FollowUpDate != nil {
		t.Fatalf("expected follow-up cleared, got %+v", got)
	}
}

func TestSQLiteStoreListReportsScope(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTestUser(t, store, "u1", domain.UserTypePatient)
	createTestUser(t, store, "u2", domain.UserTypePatient)
	for _, id := range []string{"u1", "u2"} {
		session := &domain.Session{SessionID: "s-" + id, UserID: id, CreatedAt: time.Now(), UpdatedAt: time.Now(), IsActive: true}
		if err := store.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		report := &domain.Report{
			ReportID:  "r-" + id,
			PatientID: id,
			SessionID: "s-" + id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := store.CreateReport(ctx, report); err != nil {
			t.Fatalf("CreateReport failed: %v", err)
		}
	}

	all, err := store.ListReports(ctx, "")
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(all))
	}

	own, err := store.ListReports(ctx, "u1")
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(own) != 1 || own[0].PatientID != "u1" {
		t.Fatalf("unexpected reports: %+v", own)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pracare/backend/internal/adapter/ai"
	"github.com/pracare/backend/internal/domain"
	store "github.com/pracare/backend/internal/repository"
)

var (
	// ErrEmptySession indicates a report was requested for a session with
	// no messages.
	ErrEmptySession = errors.New("session has no messages to analyze")
	// ErrReportNotFound indicates a missing report.
	ErrReportNotFound = errors.New("report not found")
	// ErrReviewForbidden indicates the actor is not allowed to review.
	ErrReviewForbidden = errors.New("only doctors can review reports")
	// ErrAnalysisFailed wraps a hard failure from the analysis operation.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrInvalidFollowUpDate indicates a malformed follow-up date.
	ErrInvalidFollowUpDate = errors.New("follow_up_date must be formatted as YYYY-MM-DD")
)

// GenerateReport analyzes a session and persists the result as a report.
// Generation is idempotent by session: an existing report is returned
// unchanged, and the store's uniqueness constraint keeps that true even
// when two calls race past the existence check.
func (s *Service) GenerateReport(ctx context.Context, user *domain.User, sessionID string) (*domain.Report, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.UserID != user.UserID {
		return nil, ErrSessionNotFound
	}

	count, err := s.store.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptySession
	}

	existing, err := s.store.GetReportBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up report: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	history, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	analysis, err := s.gateway.AnalyzeSession(ctx, history)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrUnparsableAnalysis):
			// Best-effort report: the raw response survives in the summary.
			log.Printf("WARN: analysis for session %s degraded: %v", sessionID, err)
		case errors.Is(err, ai.ErrNoUserMessages):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
	}

	now := time.Now()
	report := &domain.Report{
		ReportID:          uuid.New().String(),
		PatientID:         user.UserID,
		SessionID:         sessionID,
		MoodIndicators:    analysis.MoodIndicators,
		KeyConcerns:       analysis.KeyConcerns,
		CopingMechanisms:  analysis.CopingMechanisms,
		RiskFactors:       analysis.RiskFactors,
		AIRecommendations: analysis.Recommendations,
		SessionSummary:    analysis.SessionSummary,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		if store.IsUniqueViolation(err) {
			// A concurrent generate won the race; return its report.
			return s.store.GetReportBySession(ctx, sessionID)
		}
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	// Re-read for the denormalized patient and session fields.
	return s.store.GetReportBySession(ctx, sessionID)
}

// ListReports returns all reports for doctors and only the caller's own
// for patients, newest first.
func (s *Service) ListReports(ctx context.Context, user *domain.User) ([]domain.Report, error) {
	patientID := user.UserID
	if user.UserType == domain.UserTypeDoctor {
		patientID = ""
	}
	reports, err := s.store.ListReports(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// ReviewReport applies a doctor's partial update to a report. The
// reviewing doctor is assigned on first review and kept afterwards.
func (s *Service) ReviewReport(ctx context.Context, user *domain.User, reportID string, req *domain.ReviewReportRequest) (*domain.Report, error) {
	decision, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
		"user_id":   user.UserID,
		"user_type": string(user.UserType),
		"report_id": reportID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate review policy: %w", err)
	}
	if decision != "allow" {
		return nil, ErrReviewForbidden
	}

	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	if report.DoctorID == "" {
		report.DoctorID = user.UserID
	}
	if req.DoctorNotes != nil {
		report.DoctorNotes = *req.DoctorNotes
	}
	if req.DoctorRecommendations != nil {
		report.DoctorRecommendations = *req.DoctorRecommendations
	}
	if req.Prescription != nil {
		report.Prescription = *req.Prescription
	}
	if req.FollowUpRequired != nil {
		report.FollowUpRequired = *req.FollowUpRequired
	}
	if req.FollowUpDate != "" {
		date, err := time.Parse("2006-01-02", req.FollowUpDate)
		if err != nil {
			return nil, ErrInvalidFollowUpDate
		}
		report.FollowUpDate = &date
	}
	// A report never carries a follow-up date without the flag.
	if !report.FollowUpRequired {
		report.FollowUpDate = nil
	}
	report.UpdatedAt = time.Now()

	if err := s.store.UpdateReportReview(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	return s.store.GetReport(ctx, reportID)
}

// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/pracare/backend/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)

	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context, userID string) ([]domain.Session, error)
	CountSessions(ctx context.Context, userID string) (int, error)
	TouchSession(ctx context.Context, sessionID string, updatedAt time.Time) error

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
	CountMessages(ctx context.Context, sessionID string) (int, error)

	// Report operations
	CreateReport(ctx context.Context, report *domain.Report) error
	GetReport(ctx context.Context, reportID string) (*domain.Report, error)
	GetReportBySession(ctx context.Context, sessionID string) (*domain.Report, error)
	ListReports(ctx context.Context, patientID string) ([]domain.Report, error)
	UpdateReportReview(ctx context.Context, report *domain.Report) error

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

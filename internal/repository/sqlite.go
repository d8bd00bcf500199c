package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pracare/backend/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Seed demo accounts
	if err := store.seedUsers(); err != nil {
		log.Printf("Failed to seed users: %v", err)
		// Don't fail startup for this
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			user_type TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_active INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, updated_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		// session_id is UNIQUE so report generation stays idempotent even
		// when two generate calls race past the existence check.
		`CREATE TABLE IF NOT EXISTS reports (
			report_id TEXT PRIMARY KEY,
			patient_id TEXT NOT NULL,
			session_id TEXT NOT NULL UNIQUE,
			doctor_id TEXT,
			mood_indicators TEXT NOT NULL DEFAULT '[]',
			key_concerns TEXT NOT NULL DEFAULT '[]',
			coping_mechanisms TEXT NOT NULL DEFAULT '[]',
			risk_factors TEXT NOT NULL DEFAULT '[]',
			ai_recommendations TEXT NOT NULL DEFAULT '[]',
			session_summary TEXT NOT NULL DEFAULT '',
			doctor_notes TEXT NOT NULL DEFAULT '',
			doctor_recommendations TEXT NOT NULL DEFAULT '',
			prescription TEXT NOT NULL DEFAULT '',
			follow_up_required INTEGER NOT NULL DEFAULT 0,
			follow_up_date DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (patient_id) REFERENCES users(user_id) ON DELETE CASCADE,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_patient ON reports(patient_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

func (s *SQLiteStore) seedUsers() error {
	ctx := context.Background()
	users := []domain.User{
		{
			UserID:    uuid.New().String(),
			Email:     "patient@pracare.local",
			FirstName: "Demo",
			LastName:  "Patient",
			UserType:  domain.UserTypePatient,
			Token:     "patient-dev-token",
			CreatedAt: time.Now(),
		},
		{
			UserID:    uuid.New().String(),
			Email:     "doctor@pracare.local",
			FirstName: "Demo",
			LastName:  "Doctor",
			UserType:  domain.UserTypeDoctor,
			Token:     "doctor-dev-token",
			CreatedAt: time.Now(),
		},
	}

	for _, u := range users {
		if err := s.CreateUser(ctx, &u); err != nil {
			// Ignore if exists
			if !IsUniqueViolation(err) {
				return err
			}
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a SQLite unique-constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, first_name, last_name, user_type, token, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.UserID, user.Email, user.FirstName, user.LastName, user.UserType, user.Token, user.CreatedAt)
	return err
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT user_id, email, first_name, last_name, user_type, token, created_at FROM users WHERE user_id = ?`,
		userID))
}

// GetUserByToken retrieves a user by its bearer token.
func (s *SQLiteStore) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT user_id, email, first_name, last_name, user_type, token, created_at FROM users WHERE token = ?`,
		token))
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.UserID, &user.Email, &user.FirstName, &user.LastName, &user.UserType, &user.Token, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, title, created_at, updated_at, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.UserID, session.Title, session.CreatedAt, session.UpdatedAt, session.IsActive)
	return err
}

// GetSession retrieves a session by ID. Returns nil if no session exists.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, title, created_at, updated_at, is_active FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt, &session.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions retrieves the user's sessions, most recently updated first,
// with message counts.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.session_id, s.user_id, s.title, s.created_at, s.updated_at, s.is_active,
			(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.session_id) AS message_count
		FROM sessions s WHERE s.user_id = ? ORDER BY s.updated_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.SessionID, &sess.UserID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt, &sess.IsActive, &sess.MessageCount); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CountSessions returns how many sessions the user owns.
func (s *SQLiteStore) CountSessions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// TouchSession sets a session's last-activity timestamp.
func (s *SQLiteStore) TouchSession(ctx context.Context, sessionID string, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE session_id = ?`,
		updatedAt, sessionID)
	return err
}

// CreateMessage creates a new message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionID, message.Role, message.Content, message.CreatedAt)
	return err
}

// GetMessages retrieves a session's messages in ascending creation order.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, session_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY created_at ASC, message_id ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CountMessages returns how many messages a session holds.
func (s *SQLiteStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

const reportColumns = `r.report_id, r.patient_id, r.session_id, r.doctor_id,
	r.mood_indicators, r.key_concerns, r.coping_mechanisms, r.risk_factors, r.ai_recommendations, r.session_summary,
	r.doctor_notes, r.doctor_recommendations, r.prescription, r.follow_up_required, r.follow_up_date,
	r.created_at, r.updated_at,
	p.email, p.first_name, p.last_name, p.user_type,
	d.email, d.first_name, d.last_name, d.user_type,
	s.title, s.created_at`

const reportJoins = ` FROM reports r
	JOIN users p ON p.user_id = r.patient_id
	LEFT JOIN users d ON d.user_id = r.doctor_id
	JOIN sessions s ON s.session_id = r.session_id`

// CreateReport creates a new report. A second report for the same session
// fails the unique constraint; callers detect that with IsUniqueViolation.
func (s *SQLiteStore) CreateReport(ctx context.Context, report *domain.Report) error {
	var doctorID sql.NullString
	if report.DoctorID != "" {
		doctorID = sql.NullString{String: report.DoctorID, Valid: true}
	}
	var followUp sql.NullTime
	if report.FollowUpDate != nil {
		followUp = sql.NullTime{Time: *report.FollowUpDate, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (report_id, patient_id, session_id, doctor_id,
			mood_indicators, key_concerns, coping_mechanisms, risk_factors, ai_recommendations, session_summary,
			doctor_notes, doctor_recommendations, prescription, follow_up_required, follow_up_date,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ReportID, report.PatientID, report.SessionID, doctorID,
		marshalList(report.MoodIndicators), marshalList(report.KeyConcerns), marshalList(report.CopingMechanisms),
		marshalList(report.RiskFactors), marshalList(report.AIRecommendations), report.SessionSummary,
		report.DoctorNotes, report.DoctorRecommendations, report.Prescription, report.FollowUpRequired, followUp,
		report.CreatedAt, report.UpdatedAt)
	return err
}

// GetReport retrieves a report by ID. Returns nil if no report exists.
func (s *SQLiteStore) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	return s.queryReport(ctx, `SELECT `+reportColumns+reportJoins+` WHERE r.report_id = ?`, reportID)
}

// GetReportBySession retrieves the report for a session, if any.
func (s *SQLiteStore) GetReportBySession(ctx context.Context, sessionID string) (*domain.Report, error) {
	return s.queryReport(ctx, `SELECT `+reportColumns+reportJoins+` WHERE r.session_id = ?`, sessionID)
}

// ListReports retrieves reports newest first. An empty patientID lists all
// reports (the doctor view); otherwise only the patient's own.
func (s *SQLiteStore) ListReports(ctx context.Context, patientID string) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + reportJoins
	args := []interface{}{}
	if patientID != "" {
		query += ` WHERE r.patient_id = ?`
		args = append(args, patientID)
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

// UpdateReportReview persists the doctor-authored fields of a report.
func (s *SQLiteStore) UpdateReportReview(ctx context.Context, report *domain.Report) error {
	var doctorID sql.NullString
	if report.DoctorID != "" {
		doctorID = sql.NullString{String: report.DoctorID, Valid: true}
	}
	var followUp sql.NullTime
	if report.FollowUpDate != nil {
		followUp = sql.NullTime{Time: *report.FollowUpDate, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE reports SET doctor_id = ?, doctor_notes = ?, doctor_recommendations = ?, prescription = ?,
			follow_up_required = ?, follow_up_date = ?, updated_at = ?
		WHERE report_id = ?`,
		doctorID, report.DoctorNotes, report.DoctorRecommendations, report.Prescription,
		report.FollowUpRequired, followUp, report.UpdatedAt, report.ReportID)
	return err
}

func (s *SQLiteStore) queryReport(ctx context.Context, query string, args ...interface{}) (*domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanReport(rows)
}

func scanReport(rows *sql.Rows) (*domain.Report, error) {
	var report domain.Report
	var doctorID sql.NullString
	var followUp, sessionDate sql.NullTime
	var moods, concerns, coping, risks, recs string
	patient := domain.Profile{}
	var docEmail, docFirst, docLast, docType sql.NullString

	if err := rows.Scan(&report.ReportID, &report.PatientID, &report.SessionID, &doctorID,
		&moods, &concerns, &coping, &risks, &recs, &report.SessionSummary,
		&report.DoctorNotes, &report.DoctorRecommendations, &report.Prescription, &report.FollowUpRequired, &followUp,
		&report.CreatedAt, &report.UpdatedAt,
		&patient.Email, &patient.FirstName, &patient.LastName, &patient.UserType,
		&docEmail, &docFirst, &docLast, &docType,
		&report.SessionTitle, &sessionDate); err != nil {
		return nil, err
	}

	report.MoodIndicators = unmarshalList(moods)
	report.KeyConcerns = unmarshalList(concerns)
	report.CopingMechanisms = unmarshalList(coping)
	report.RiskFactors = unmarshalList(risks)
	report.AIRecommendations = unmarshalList(recs)

	patient.UserID = report.PatientID
	report.Patient = &patient

	if doctorID.Valid {
		report.DoctorID = doctorID.String
		report.Doctor = &domain.Profile{
			UserID:    doctorID.String,
			Email:     docEmail.String,
			FirstName: docFirst.String,
			LastName:  docLast.String,
			UserType:  domain.UserType(docType.String),
		}
	}
	if followUp.Valid {
		t := followUp.Time
		report.FollowUpDate = &t
	}
	if sessionDate.Valid {
		report.SessionDate = sessionDate.Time
	}
	return &report, nil
}

func marshalList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return string(data)
}

func unmarshalList(data string) []string {
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

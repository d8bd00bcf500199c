// Package domain defines the core domain models for the Pracare backend.
package domain

import "time"

// User is an authenticated actor. Patients own chat sessions and reports;
// doctors review reports.
type User struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	UserType  UserType  `json:"user_type"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the nested user summary embedded in report payloads.
type Profile struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	UserType  UserType `json:"user_type"`
}

// Profile returns the embeddable summary of the user.
func (u *User) Profile() *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		UserID:    u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
	}
}

// Session represents one conversation thread owned by a single user.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `json:"is_active"`

	// Populated on detail/listing reads.
	Messages     []Message `json:"messages,omitempty"`
	MessageCount int       `json:"message_count"`
}

// Message is a single turn in a session. Messages are immutable once
// created and ordered by creation time ascending within a session.
type Message struct {
	MessageID string      `json:"message_id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// Report is the structured AI-derived summary of one session, subject to
// clinician review. At most one report exists per session.
type Report struct {
	ReportID  string `json:"report_id"`
	PatientID string `json:"patient_id"`
	SessionID string `json:"session_id"`
	DoctorID  string `json:"doctor_id,omitempty"`

	// AI analysis results.
	MoodIndicators    []string `json:"mood_indicators"`
	KeyConcerns       []string `json:"key_concerns"`
	CopingMechanisms  []string `json:"coping_mechanisms"`
	RiskFactors       []string `json:"risk_factors"`
	AIRecommendations []string `json:"ai_recommendations"`
	SessionSummary    string   `json:"session_summary"`

	// Doctor's input.
	DoctorNotes           string     `json:"doctor_notes"`
	DoctorRecommendations string     `json:"doctor_recommendations"`
	Prescription          string     `json:"prescription"`
	FollowUpRequired      bool       `json:"follow_up_required"`
	FollowUpDate          *time.Time `json:"follow_up_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Denormalized fields populated on reads.
	Patient      *Profile  `json:"patient,omitempty"`
	Doctor       *Profile  `json:"doctor,omitempty"`
	SessionTitle string    `json:"session_title,omitempty"`
	SessionDate  time.Time `json:"session_date,omitzero"`
}

package domain

import "time"

// SendMessageRequest is the request body for one chat turn. SessionID is
// optional; absence means "start a new session".
type SendMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// MessagePayload is a persisted message as returned to the client.
type MessagePayload struct {
	MessageID string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageResponse is the response for one chat turn. Degraded is set
// when the assistant content is the fallback text produced because the
// completion endpoint could not be reached.
type SendMessageResponse struct {
	SessionID   string         `json:"session_id"`
	UserMessage MessagePayload `json:"user_message"`
	AIResponse  MessagePayload `json:"ai_response"`
	Degraded    bool           `json:"degraded,omitempty"`
}

// ReviewReportRequest is the doctor's partial update to a report.
// Pointer fields distinguish "not supplied" from an explicit empty value.
type ReviewReportRequest struct {
	DoctorNotes           *string `json:"doctor_notes,omitempty"`
	DoctorRecommendations *string `json:"doctor_recommendations,omitempty"`
	Prescription          *string `json:"prescription,omitempty"`
	FollowUpRequired      *bool   `json:"follow_up_required,omitempty"`
	FollowUpDate          string  `json:"follow_up_date,omitempty"` // YYYY-MM-DD, empty means absent
}

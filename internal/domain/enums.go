package domain

// UserType represents the role attribute of a user.
type UserType string

const (
	UserTypePatient UserType = "patient"
	UserTypeDoctor  UserType = "doctor"
)

// MessageRole represents the author of a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two accepted values.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

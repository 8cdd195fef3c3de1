package contact

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// SubmitInput is a public contact-form submission.
type SubmitInput struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Subject   string  `json:"subject" validate:"required"`
	Message   string  `json:"message" validate:"required"`
	IPAddress *string `json:"-"`
	UserAgent *string `json:"-"`
}

// TriageInput is the admin update for a message.
type TriageInput struct {
	Status     *enums.ContactStatus `json:"status,omitempty"`
	AdminNotes *string              `json:"admin_notes,omitempty"`
	AssignedTo *uuid.UUID           `json:"assigned_to,omitempty"`
}

// View is the serialized contact message.
type View struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Phone      *string             `json:"phone,omitempty"`
	Subject    string              `json:"subject"`
	Message    string              `json:"message"`
	Status     enums.ContactStatus `json:"status"`
	AdminNotes *string             `json:"admin_notes,omitempty"`
	AssignedTo *uuid.UUID          `json:"assigned_to,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewView projects the model into its API shape.
func NewView(m *models.ContactMessage) *View {
	if m == nil {
		return nil
	}
	return &View{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Subject:    m.Subject,
		Message:    m.Message,
		Status:     m.Status,
		AdminNotes: m.AdminNotes,
		AssignedTo: m.AssignedTo,
		CreatedAt:  m.CreatedAt,
	}
}

// ListFilters narrows the admin inbox.
type ListFilters struct {
	Status *enums.ContactStatus
}

// List is one admin page of messages.
type List struct {
	Messages   []View `json:"messages"`
	NextCursor string `json:"next_cursor,omitempty"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// ContactMessage stores a contact-form submission and its triage state.
type ContactMessage struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name       string              `gorm:"column:name;not null"`
	Email      string              `gorm:"column:email;not null"`
	Phone      *string             `gorm:"column:phone"`
	Subject    string              `gorm:"column:subject;not null"`
	Message    string              `gorm:"column:message;not null"`
	Status     enums.ContactStatus `gorm:"column:status;type:text;not null;default:'NEW'"`
	IPAddress  *string             `gorm:"column:ip_address"`
	UserAgent  *string             `gorm:"column:user_agent"`
	AdminNotes *string             `gorm:"column:admin_notes"`
	AssignedTo *uuid.UUID          `gorm:"column:assigned_to;type:uuid"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

// UserView is the serialized account. PasswordHash never leaves the package.
type UserView struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     *string        `json:"phone,omitempty"`
	Role      enums.UserRole `json:"role"`
	IsBanned  bool           `json:"is_banned"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewUserView projects the model into its API shape.
func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		IsBanned:  u.IsBanned,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateMeInput edits the caller's own profile. Nil fields stay untouched.
type UpdateMeInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// BanInput records why an account is being banned.
type BanInput struct {
	Reason string `json:"reason" validate:"required"`
}

// ActivityView is one audit row of account activity.
type ActivityView struct {
	ID          uuid.UUID  `json:"id"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
	PerformedBy *uuid.UUID `json:"performed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewActivityView projects the model into its API shape.
func NewActivityView(l *models.UserActivityLog) *ActivityView {
	if l == nil {
		return nil
	}
	return &ActivityView{
		ID:          l.ID,
		Action:      l.Action,
		Description: l.Description,
		PerformedBy: l.PerformedBy,
		CreatedAt:   l.CreatedAt,
	}
}

// UserList is one admin page of accounts.
type UserList struct {
	Users      []UserView `json:"users"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// UserFilters narrows the admin user listing.
type UserFilters struct {
	Role   *enums.UserRole
	Banned *bool
	Search string
}

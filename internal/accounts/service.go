package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

// Service exposes the self-service profile surface and the admin account
// surface.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*UserView, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateMeInput) (*UserView, error)
	MyActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityView, error)

	ListUsers(ctx context.Context, params pagination.Params, filters UserFilters) (*UserList, error)
	GetUser(ctx context.Context, id uuid.UUID) (*UserView, error)
	Ban(ctx context.Context, adminID, userID uuid.UUID, input BanInput) (*UserView, error)
	Unban(ctx context.Context, adminID, userID uuid.UUID) (*UserView, error)
}

type service struct {
	repo Repository
}

// NewService builds the accounts service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewUserView(user), nil
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateMeInput) (*UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if len(updates) == 0 {
		return NewUserView(user), nil
	}
	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return s.Me(ctx, userID)
}

func (s *service) MyActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	logs, err := s.repo.ListActivityLogs(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}
	views := make([]ActivityView, 0, len(logs))
	for i := range logs {
		views = append(views, *NewActivityView(&logs[i]))
	}
	return views, nil
}

func (s *service) ListUsers(ctx context.Context, params pagination.Params, filters UserFilters) (*UserList, error) {
	if filters.Role != nil && !filters.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	list := &UserList{Users: make([]UserView, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Users = append(list.Users, *NewUserView(&rows[i]))
	}
	return list, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserView, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewUserView(user), nil
}

// Ban blocks the account from authenticated surfaces. Admin accounts cannot
// be banned through this path.
func (s *service) Ban(ctx context.Context, adminID, userID uuid.UUID, input BanInput) (*UserView, error) {
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ban reason required")
	}
	if adminID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot ban your own account")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be banned")
	}
	if user.IsBanned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user is already banned")
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"is_banned":  true,
		"ban_reason": input.Reason,
		"banned_at":  now,
	}
	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ban user")
	}
	_ = s.repo.CreateActivityLog(ctx, &models.UserActivityLog{
		UserID:      user.ID,
		Action:      "user_banned",
		Description: input.Reason,
		PerformedBy: &adminID,
	})
	return s.GetUser(ctx, userID)
}

func (s *service) Unban(ctx context.Context, adminID, userID uuid.UUID) (*UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsBanned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user is not banned")
	}
	updates := map[string]any{
		"is_banned":  false,
		"ban_reason": nil,
		"banned_at":  nil,
	}
	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unban user")
	}
	_ = s.repo.CreateActivityLog(ctx, &models.UserActivityLog{
		UserID:      user.ID,
		Action:      "user_unbanned",
		PerformedBy: &adminID,
	})
	return s.GetUser(ctx, userID)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

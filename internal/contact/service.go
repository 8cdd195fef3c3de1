package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

type supportNotifier interface {
	NotifySupport(ctx context.Context, subject, body string)
}

// Service handles contact-form submissions and their admin triage.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	ListMessages(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	Triage(ctx context.Context, id uuid.UUID, input TriageInput) (*View, error)
}

type service struct {
	repo   Repository
	mailer supportNotifier
}

// NewService builds the contact service.
func NewService(repo Repository, mailer supportNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &service{repo: repo, mailer: mailer}, nil
}

// Submit stores the message and pings support. The notification is best
// effort; a mail failure never fails the submission.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*View, error) {
	if input.Name == "" || input.Email == "" || input.Subject == "" || input.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, subject and message are required")
	}

	msg, err := s.repo.Create(ctx, &models.ContactMessage{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		Status:    enums.ContactStatusNew,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}

	s.mailer.NotifySupport(ctx,
		fmt.Sprintf("New contact message: %s", msg.Subject),
		fmt.Sprintf("From %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
	)
	return NewView(msg), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewView(msg), nil
}

func (s *service) ListMessages(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	list := &List{Messages: make([]View, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Messages = append(list.Messages, *NewView(&rows[i]))
	}
	return list, nil
}

func (s *service) Triage(ctx context.Context, id uuid.UUID, input TriageInput) (*View, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid contact status %q", *input.Status))
	}
	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.AdminNotes != nil {
		updates["admin_notes"] = *input.AdminNotes
	}
	if input.AssignedTo != nil {
		updates["assigned_to"] = *input.AssignedTo
	}
	if len(updates) == 0 {
		return NewView(msg), nil
	}
	if err := s.repo.Update(ctx, msg.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update message")
	}
	return s.Get(ctx, id)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id required")
	}
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message")
	}
	return msg, nil
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/api/middleware"
	"github.com/mokolo-market/mokolo-backend/api/validators"
	"github.com/mokolo-market/mokolo-backend/internal/orders"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/pagination"
)

// callerID returns the authenticated user's uuid, or an unauthorized error
// when the context carries no identity.
func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// optionalCallerID returns nil without error for anonymous requests.
func optionalCallerID(r *http.Request) (*uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return &id, nil
}

// actorFromRequest builds the orders actor for the authenticated caller, nil
// for guests.
func actorFromRequest(r *http.Request) (*orders.Actor, error) {
	id, err := optionalCallerID(r)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, nil
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return &orders.Actor{ID: *id, Role: role}, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func paymentStatusFilter(r *http.Request) (*enums.PaymentStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("payment_status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParsePaymentStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status filter")
	}
	return &status, nil
}

func fulfillmentStatusFilter(r *http.Request) (*enums.FulfillmentStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("fulfillment_status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseFulfillmentStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment_status filter")
	}
	return &status, nil
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		return host[:idx]
	}
	return host
}

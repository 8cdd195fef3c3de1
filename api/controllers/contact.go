package controllers

import (
	"net/http"
	"strings"

	"github.com/mokolo-market/mokolo-backend/api/responses"
	"github.com/mokolo-market/mokolo-backend/api/validators"
	contactsvc "github.com/mokolo-market/mokolo-backend/internal/contact"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

// ContactSubmit accepts a public contact-form message.
func ContactSubmit(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload contactsvc.SubmitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload.Name = validators.SanitizeString(payload.Name, 120)
		payload.Subject = validators.SanitizeString(payload.Subject, 200)
		payload.Message = validators.SanitizeString(payload.Message, 5000)

		if ip := clientIP(r); ip != "" {
			payload.IPAddress = &ip
		}
		if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
			payload.UserAgent = &ua
		}

		view, err := svc.Submit(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

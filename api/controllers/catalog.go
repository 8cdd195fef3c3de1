package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/go-chi/chi/v5"

	"github.com/mokolo-market/mokolo-backend/api/responses"
	catalogsvc "github.com/mokolo-market/mokolo-backend/internal/catalog"
	pkgerrors "github.com/mokolo-market/mokolo-backend/pkg/errors"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

func ListCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ListProducts serves the public storefront catalog.
func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters catalogsvc.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id"))
				return
			}
			filters.CategoryID = &categoryID
		}
		filters.Search = strings.TrimSpace(r.URL.Query().Get("search"))

		list, err := svc.ListProducts(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductDetail resolves a product by uuid or slug.
func ProductDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slugOrID := strings.TrimSpace(chi.URLParam(r, "idOrSlug"))
		if slugOrID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product identifier required"))
			return
		}

		view, err := svc.GetProduct(r.Context(), slugOrID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

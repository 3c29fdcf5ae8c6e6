package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/api/middleware"
	"github.com/gourmetpress/gourmetpress-backend/api/responses"
	"github.com/gourmetpress/gourmetpress-backend/api/validators"
	"github.com/gourmetpress/gourmetpress-backend/internal/notifications"
	pkgerrors "github.com/gourmetpress/gourmetpress-backend/pkg/errors"
	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
)

// ListNotifications returns the actor's location notifications, newest
// first.
func ListNotifications(repo notifications.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications unavailable"))
			return
		}

		raw := middleware.LocationIDFromContext(r.Context())
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "location scope required"))
			return
		}
		locationID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly := strings.EqualFold(r.URL.Query().Get("unread"), "true")

		rows, err := repo.List(r.Context(), locationID, unreadOnly, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(repo notifications.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "notificationId"))
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}

		if err := repo.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

package controllers

import (
	"net/http"

	"github.com/aurelle/storefront-backend/api/responses"
	"github.com/aurelle/storefront-backend/api/validators"
	"github.com/aurelle/storefront-backend/internal/bestsellers"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

const (
	defaultBestsellerLimit = 10
	maxBestsellerLimit     = 100
)

func bestsellerLimit(r *http.Request) (int, error) {
	limit, err := validators.QueryInt(r, "limit", defaultBestsellerLimit)
	if err != nil {
		return 0, err
	}
	if limit <= 0 || limit > maxBestsellerLimit {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").
			WithDetails(map[string]string{"limit": "must be between 1 and 100"})
	}
	return limit, nil
}

// BestSellers returns the global product ranking.
func BestSellers(svc bestsellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bestsellers service unavailable"))
			return
		}

		limit, err := bestsellerLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ranks, err := svc.Global(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": ranks})
	}
}

// BestSellersByCategory returns per-category rankings.
func BestSellersByCategory(svc bestsellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bestsellers service unavailable"))
			return
		}

		limit, err := bestsellerLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grouped, err := svc.ByCategory(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": grouped})
	}
}

// WeeklyBestSellers returns the trending ranking for a 7-day window, walking
// back through prior weeks when the recent window is empty.
func WeeklyBestSellers(svc bestsellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bestsellers service unavailable"))
			return
		}

		limit, err := bestsellerLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.QueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.QueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.WeeklyByCategory(r.Context(), limit, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

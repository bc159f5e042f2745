package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talentscout/screening/internal/models"
	"talentscout/screening/internal/utils"
)

// RequireSessionToken rejects requests whose bearer token is not bound to the
// {id} route parameter. An empty secret disables the check.
func RequireSessionToken(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := utils.VerifySessionToken(r, secret)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "invalid_session_token",
					Message: err.Error(),
				})
				return
			}
			if sessionID != chi.URLParam(r, "id") {
				utils.JSON(w, http.StatusForbidden, models.ErrorResponse{
					Code:    "session_mismatch",
					Message: "token does not grant access to this interview",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

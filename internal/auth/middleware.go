package auth

import (
	"net/http"

	"newsdeck/internal/core"
)

// RequireLogin gates a route behind the current session, mirroring the
// reader app's login wall in front of the news screens.
func RequireLogin(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !service.IsLoggedIn() {
				core.WriteErrorResponse(w, http.StatusUnauthorized,
					core.NewUnauthorizedError("Login required", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

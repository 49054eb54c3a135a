package middleware

import (
	"net/http"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/auth"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/handler/http/response"
)

// AdminOnly must run after AuthRequired
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if !principal.IsAdmin {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

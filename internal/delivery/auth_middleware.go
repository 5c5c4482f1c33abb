package delivery

import (
	"net/http"
	"strings"

	"github.com/Vovarama1992/lang_tutor/internal/ports"
)

// AuthMiddleware requires a bearer token.
func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return authMiddleware(auth, false)
}

// MediaAuthMiddleware also accepts a "token" query parameter, for GET
// requests the browser issues on its own such as <audio src>.
func MediaAuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return authMiddleware(auth, true)
}

func authMiddleware(auth ports.AuthService, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			} else if allowQuery && r.Method == http.MethodGet {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ok, err := auth.ValidateToken(r.Context(), token)
			if err != nil || !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package delivery

import (
	_ "embed"
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/lang_tutor/internal/ports"
)

//go:embed web/index.html
var indexPage []byte

// RegisterRoutes mounts the tutor API. authSvc may be nil, in which case the
// API is open and /auth/login is not mounted.
func RegisterRoutes(
	r chi.Router,
	h *TutorHandler,
	hAuth *AuthHandler,
	authSvc ports.AuthService,
) {
	r.With(httputil.RecoverMiddleware).Get("/", Index)

	// --- auth ---
	if hAuth != nil {
		r.With(httputil.RecoverMiddleware).
			Post("/auth/login", hAuth.Login)
	}

	// --- tutor ---
	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)
		if authSvc != nil {
			pr.Use(AuthMiddleware(authSvc))
		}

		pr.Post("/api/turn/audio", h.AudioTurn)
		pr.Post("/api/turn/text", h.TextTurn)
		pr.Get("/api/transcript", h.Transcript)
	})

	// --- synthesized replies ---
	r.Group(func(mr chi.Router) {
		mr.Use(httputil.RecoverMiddleware)
		if authSvc != nil {
			mr.Use(MediaAuthMiddleware(authSvc))
		}

		mr.Get("/audio/{name}", h.Audio)
	})
}

func Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

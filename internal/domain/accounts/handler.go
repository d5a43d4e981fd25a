package accounts

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alaraguvercin/kolay-hatirla/internal/middleware"
	"github.com/alaraguvercin/kolay-hatirla/internal/platform/logger"
	"github.com/alaraguvercin/kolay-hatirla/internal/ports/auth"
)

const (
	msgNameRequired    = "Lütfen adınızı girin."
	msgPasswordTooWeak = "Şifre en az 6 karakter olmalıdır."
	msgPasswordsDiffer = "Şifreler eşleşmiyor."
	msgEmailRequired   = "Geçersiz e-posta adresi."
	msgSignupFailed    = "Kayıt olurken bir hata oluştu."
	msgLoginFailed     = "Giriş yapılırken bir hata oluştu."
	msgNoProvider      = "Kimlik servisi yapılandırılmamış."
)

type Deps struct {
	Provider auth.Provider // nil in dev mode: auth endpoints answer 503
	Log      logger.Logger

	// Localize maps provider errors to user-facing text; nil keeps fallbacks.
	Localize func(err error, fallback string) string
}

func RegisterRoutes(r chi.Router, deps Deps) {
	if deps.Localize == nil {
		deps.Localize = func(_ error, fallback string) string { return fallback }
	}

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/signup", signupHandler(deps))
		ar.Post("/login", loginHandler(deps))
		ar.Post("/logout", logoutHandler())
	})

	r.Get("/me", meHandler())
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// signupHandler validates locally (no provider call on failure), creates the
// account, then sets the display name on the fresh session.
func signupHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		name := strings.TrimSpace(req.Name)
		switch {
		case name == "":
			writeError(w, http.StatusBadRequest, msgNameRequired)
			return
		case strings.TrimSpace(req.Email) == "":
			writeError(w, http.StatusBadRequest, msgEmailRequired)
			return
		case len(req.Password) < 6:
			writeError(w, http.StatusBadRequest, msgPasswordTooWeak)
			return
		case req.Password != req.ConfirmPassword:
			writeError(w, http.StatusBadRequest, msgPasswordsDiffer)
			return
		}

		if deps.Provider == nil {
			writeError(w, http.StatusServiceUnavailable, msgNoProvider)
			return
		}

		sess, err := deps.Provider.SignUp(r.Context(), strings.TrimSpace(req.Email), req.Password)
		if err != nil {
			deps.Log.Warn("signup failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusBadRequest, deps.Localize(err, msgSignupFailed))
			return
		}

		if err := deps.Provider.SetDisplayName(r.Context(), sess.IDToken, name); err != nil {
			deps.Log.Warn("set display name failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusBadGateway, deps.Localize(err, msgSignupFailed))
			return
		}
		sess.Name = name

		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

func loginHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, msgLoginFailed)
			return
		}

		if deps.Provider == nil {
			writeError(w, http.StatusServiceUnavailable, msgNoProvider)
			return
		}

		sess, err := deps.Provider.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
		if err != nil {
			deps.Log.Warn("login failed", map[string]any{"err": err.Error()})
			writeError(w, http.StatusUnauthorized, deps.Localize(err, msgLoginFailed))
			return
		}

		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// logoutHandler exists for the client sign-out flow. Tokens are provider
// issued and stateless here, so there is no server state to clear.
func logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		writeJSON(w, http.StatusOK, userResponse{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.Name,
		})
	}
}

func toSessionResponse(sess auth.Session) sessionResponse {
	return sessionResponse{
		Token:        sess.IDToken,
		RefreshToken: sess.RefreshToken,
		User: userResponse{
			ID:    sess.UserID,
			Email: sess.Email,
			Name:  sess.Name,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

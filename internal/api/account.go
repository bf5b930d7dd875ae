package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/hackgods/medication-reminder/internal/auth"
	"github.com/hackgods/medication-reminder/internal/settings"
)

func signupHandler(provider *auth.Provider, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if !decodeBody(w, r, &req) {
			return
		}

		u, err := provider.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			handleAuthError(w, err)
			return
		}

		respondSession(w, http.StatusCreated, tokens, u)
	}
}

func loginHandler(provider *auth.Provider, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		u, err := provider.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handleAuthError(w, err)
			return
		}

		respondSession(w, http.StatusOK, tokens, u)
	}
}

func logoutHandler(provider *auth.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := provider.Logout(r.Context()); err != nil {
			handleAuthError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func getThemeHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.Theme(r.Context())
		if err != nil {
			handleSettingsError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: string(t)})
	}
}

func setThemeHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ThemeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := svc.SetTheme(r.Context(), settings.Theme(req.Theme)); err != nil {
			handleSettingsError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: req.Theme})
	}
}

func respondSession(w http.ResponseWriter, status int, tokens *auth.TokenManager, u auth.User) {
	token, exp, err := tokens.Issue(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, ExpiresAt: exp, User: u})
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, auth.ErrBusy):
		writeError(w, http.StatusConflict, "auth_busy", "another sign-in is in progress, please retry shortly")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_cancelled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidTheme):
		writeError(w, http.StatusBadRequest, "invalid_theme", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_cancelled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
	}
}

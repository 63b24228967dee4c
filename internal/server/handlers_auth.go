package server

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// handleAuthLogin handles POST /api/auth/login — exchange the access key for
// a bearer token. Single-user deployment: one bcrypt hash in config, one JWT.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if !s.app.Config.Auth.Enabled() {
		WriteError(w, http.StatusNotFound, "Authentication not configured")
		return
	}

	var req struct {
		AccessKey string `json:"access_key"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	keyBytes := []byte(req.AccessKey)
	if len(keyBytes) > 72 {
		keyBytes = keyBytes[:72]
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.app.Config.Auth.AccessKeyHash), keyBytes); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := signJWT(&s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": int(s.app.Config.Auth.GetTokenExpiry().Seconds()),
	})
}

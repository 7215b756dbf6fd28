package httpx

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/pkg/binder"
	"github.com/opshub-io/opshub/pkg/clientip"
	"github.com/opshub-io/opshub/pkg/logger"
)

const loginPath = "/login"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// login verifies credentials and rotates the caller onto an authenticated
// session. Unknown accounts and wrong passwords produce the same failure so
// the endpoint does not confirm which emails exist.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := binder.JSON()(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, action.Fail[loginResponse](
			apperr.Validation("request body must be valid JSON")))
		return
	}

	invalid := apperr.Validation("invalid email or password")

	user, err := h.Directory.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Burn a comparison anyway to keep timing uniform.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGyyBJVUZu1sDxyFjDVqjZO6qymTCDO6"), []byte(req.Password))
		writeJSON(w, http.StatusUnauthorized, action.Fail[loginResponse](invalid))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, action.Fail[loginResponse](invalid))
		return
	}

	if _, err := h.Sessions.Authenticate(r.Context(), w, r, user.ID); err != nil {
		h.Log.ErrorContext(r.Context(), "login session rotation failed",
			logger.UserID(user.ID), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, action.Fail[loginResponse](apperr.System()))
		return
	}

	h.Log.InfoContext(r.Context(), "user logged in",
		logger.UserID(user.ID), "client_ip", clientip.FromContext(r.Context()))
	writeJSON(w, http.StatusOK, action.OK(loginResponse{UserID: user.ID.String(), Email: user.Email}))
}

// logout destroys the session and sends the caller back to the login page.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context(), w, r); err != nil {
		h.Log.ErrorContext(r.Context(), "logout failed", logger.Error(err))
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// authCallback is the public landing for the hosted-auth flow. The provider
// redirect carries no state the server needs here, so it just forwards to
// the app root.
func (h *Handler) authCallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

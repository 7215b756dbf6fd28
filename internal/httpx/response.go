package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// redirectToLogin points unauthenticated callers at /login. Browsers get a
// 303 redirect; API clients get a 401 failure envelope with the login path
// in the Location header so they know where to re-authenticate. The action
// layer never navigates; this is the one place navigation happens.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	w.Header().Set("Location", loginPath)
	writeJSON(w, http.StatusUnauthorized, action.Fail[struct{}](apperr.Unauthenticated()))
}

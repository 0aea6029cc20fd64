package routes

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/mbolis/tailor-intake/app"
	"github.com/mbolis/tailor-intake/httpx"
	"github.com/mbolis/tailor-intake/log"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

// Login exchanges basic auth credentials for a token pair, returned in the
// body and as cookies.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		issueTokens(w, r, app, "login", httpx.PasswordGrant(user, pass))
	}
}

// Refresh redeems the refresh token sent as "Authorization: Refresh <token>"
// or, failing that, in the refresh_token cookie.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token string
		if match := reRefresh.FindStringSubmatch(r.Header.Get("authorization")); match != nil {
			token = match[1]
		} else if cookie, err := r.Cookie(httpx.RefreshTokenCookie); err == nil {
			token = cookie.Value
		}
		if token == "" {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		issueTokens(w, r, app, "refresh", httpx.RefreshGrant(token))
	}
}

func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.ClearTokenCookies(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func issueTokens(w http.ResponseWriter, r *http.Request, app app.App, code string, grant url.Values) {
	resp, err := httpx.RequestToken(r.Context(), app.BearerServer, grant)
	if err != nil {
		httpx.LogInternalError(w, r, code+".request", err)
		return
	}

	if resp.Status() == http.StatusOK {
		var issued httpx.TokenResponse
		if err = resp.DecodeJSON(&issued); err != nil {
			httpx.LogInternalError(w, r, code+".parse", err)
			return
		}
		httpx.SetTokenCookies(w, issued)
	} else {
		log.Debugf("%s.rejected: status %d", code, resp.Status())
	}
	resp.Flush(w)
}

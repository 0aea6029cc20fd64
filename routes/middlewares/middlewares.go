package middlewares

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/mbolis/tailor-intake/auth"
	"github.com/mbolis/tailor-intake/httpx"
	"github.com/mbolis/tailor-intake/log"
)

// TokenCookie lets browser requests authenticate with the access_token
// cookie when they carry no Authorization header.
func TokenCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") == "" {
			if token, err := r.Cookie(httpx.AccessTokenCookie); err == nil && token.Value != "" {
				r.Header.Set("authorization", "Bearer "+token.Value)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Admin checks for a valid bearer token with the 'admin' role and puts the
// caller in the request context.
func Admin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(oauth.CredentialContext).(string)
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		caller := auth.NewCaller(username, claims["roles"])
		if !caller.Authenticated() {
			httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.not_admin")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), caller)))
	})
}

// CookieAuth guards browser pages: a request whose access token is missing
// or rejected gets a new one through the refresh_token cookie, or is
// redirected to loginPath with a goto parameter pointing back.
func CookieAuth(bearerServer *oauth.BearerServer, loginPath string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				h.ServeHTTP(w, r)
				return
			}

			token, err := r.Cookie(httpx.AccessTokenCookie)
			if err == nil {
				r.Header.Set("authorization", "Bearer "+token.Value)
				buf := httpx.NewResponseBuffer()
				h.ServeHTTP(buf, r)
				if buf.Status() != http.StatusUnauthorized {
					buf.Flush(w)
					return
				}
			}

			loginLocation := loginPath + "?goto=" + url.QueryEscape(r.RequestURI)

			refreshToken, err := r.Cookie(httpx.RefreshTokenCookie)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					httpx.LogInternalError(w, r, "auth.cookie", err)
					return
				}
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			}

			resp, err := httpx.RequestToken(r.Context(), bearerServer, httpx.RefreshGrant(refreshToken.Value))
			if err != nil {
				httpx.LogInternalError(w, r, "auth.refresh", err)
				return
			}
			if resp.Status() == http.StatusUnauthorized {
				log.Debug("auth.refresh: rejected, redirecting to login")
				httpx.ClearTokenCookies(w)
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			}
			if resp.Status() != http.StatusOK {
				httpx.LogStatus(w, r, resp.Status(), log.ErrorLevel, "auth.refresh.status")
				return
			}

			var issued httpx.TokenResponse
			if err = resp.DecodeJSON(&issued); err != nil {
				httpx.LogInternalError(w, r, "auth.refresh.parse", err)
				return
			}
			httpx.SetTokenCookies(w, issued)

			r.Header.Set("authorization", "Bearer "+issued.AccessToken)
			h.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated sends callers that already hold a valid admin token
// to target instead of serving the page.
func RedirectAuthenticated(secret, target string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(httpx.AccessTokenCookie); err == nil {
				authenticated := false
				probe := chi.Chain(TokenCookie, Admin(secret)).HandlerFunc(func(http.ResponseWriter, *http.Request) {
					authenticated = true
				})
				probe.ServeHTTP(httpx.NewResponseBuffer(), r.Clone(r.Context()))
				if authenticated {
					http.Redirect(w, r, target, http.StatusTemporaryRedirect)
					return
				}
			}
			h.ServeHTTP(w, r)
		})
	}
}

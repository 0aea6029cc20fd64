package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/tailor-intake/config"
	"github.com/mbolis/tailor-intake/database"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorResponses(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	LogInternalError(rec, r, "db.get_submission", errors.New("disk I/O error"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "disk")

	rec = httptest.NewRecorder()
	LogNotFound(rec, r, "get_submission", "42")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	LogStatusMsg(rec, r, http.StatusBadRequest, log.DebugLevel, "request.status", "invalid status %q", "bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `invalid status "bogus"`, decodeError(t, rec).Error)

	rec = httptest.NewRecorder()
	LogInvalidFields(rec, r, "intake.validate", map[string]string{"email": "required"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrorResponse{Error: "invalid fields", Fields: map[string]string{"email": "required"}}, decodeError(t, rec))
}

func TestResponseBuffer(t *testing.T) {
	buf := NewResponseBuffer()
	assert.Zero(t, buf.Status())

	buf.Header().Set("x-test", "1")
	buf.WriteHeader(http.StatusCreated)
	buf.WriteHeader(http.StatusTeapot)
	_, _ = buf.Write([]byte(`{"ok":true}`))

	rec := httptest.NewRecorder()
	require.NoError(t, buf.Flush(rec))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("x-test"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	var v struct{ OK bool }
	require.NoError(t, buf.DecodeJSON(&v))
	assert.True(t, v.OK)
}

func TestResponseBufferImplicitOK(t *testing.T) {
	buf := NewResponseBuffer()
	_, _ = buf.Write([]byte("x"))

	assert.Equal(t, http.StatusOK, buf.Status())
}

func TestBearerServerGrants(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "intake.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	admins := store.NewAdmins(db)
	ctx := context.Background()
	require.NoError(t, admins.Create(ctx, "ops", "hunter2"))

	bs := NewBearerServer(admins, config.Config{TokenSecret: "test-secret", TokenTTL: time.Minute})

	resp, err := RequestToken(ctx, bs, PasswordGrant("ops", "wrong"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status())

	resp, err = RequestToken(ctx, bs, PasswordGrant("ops", "hunter2"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status())
	var token TokenResponse
	require.NoError(t, resp.DecodeJSON(&token))
	assert.NotEmpty(t, token.AccessToken)
	assert.NotEmpty(t, token.RefreshToken)
	assert.EqualValues(t, 60, token.ExpiresIn)

	resp, err = RequestToken(ctx, bs, RefreshGrant(token.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status())

	resp, err = RequestToken(ctx, bs, RefreshGrant(token.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status(), "refresh tokens are single use")
}

func TestTokenCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTokenCookies(rec, TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 120})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, 120, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, RefreshTokenCookie, cookies[1].Name)
	assert.Equal(t, "r", cookies[1].Value)

	rec = httptest.NewRecorder()
	ClearTokenCookies(rec)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

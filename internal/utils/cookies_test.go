package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieManager_Set(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewCookieManager(15*time.Minute, false)
	assert.Equal(t, 15*time.Minute, m.MaxAge())
	m.Set(rec, SessionCookieName, "abc")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "token", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 900, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestCookieManager_Set_Secure(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookieManager(15*time.Minute, true).Set(rec, SessionCookieName, "abc")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestCookieManager_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookieManager(15*time.Minute, true).Clear(rec, SessionCookieName)

	header := rec.Header().Get("Set-Cookie")
	assert.Contains(t, header, "token=;")
	assert.Contains(t, header, "Max-Age=0")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Strict")
	assert.Contains(t, header, "Path=/")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}

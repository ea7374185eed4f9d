package utils

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie that carries the signed session token
const SessionCookieName = "token"

// CookieManager sets and clears session cookies with a fixed attribute set
type CookieManager struct {
	maxAge time.Duration
	secure bool
}

// NewCookieManager creates a CookieManager. secure should be true in production.
func NewCookieManager(maxAge time.Duration, secure bool) *CookieManager {
	return &CookieManager{maxAge: maxAge, secure: secure}
}

// MaxAge returns the lifetime given to cookies set by the manager
func (m *CookieManager) MaxAge() time.Duration {
	return m.maxAge
}

// Set attaches an HttpOnly, SameSite=Strict cookie to w.
func (m *CookieManager) Set(w http.ResponseWriter, name, value string) {
	cookie := m.base(name)
	cookie.Value = value
	cookie.MaxAge = int(m.maxAge.Seconds())
	http.SetCookie(w, cookie)
}

// Clear expires the cookie. The attributes must match the ones used by Set,
// otherwise browsers keep the original.
func (m *CookieManager) Clear(w http.ResponseWriter, name string) {
	cookie := m.base(name)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

func (m *CookieManager) base(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

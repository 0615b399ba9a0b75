package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RefreshCookieName is the cookie that carries the refresh token.
const RefreshCookieName = "refreshToken"

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (cfg CookieConfig) maxAgeSeconds() int {
	if cfg.MaxAge <= 0 {
		return int((7 * 24 * time.Hour).Seconds())
	}
	return int(cfg.MaxAge.Seconds())
}

func (cfg CookieConfig) set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, cfg.cookie(token, cfg.maxAgeSeconds()))
}

// clear expires the cookie using the same attributes it was set with.
func (cfg CookieConfig) clear(c *gin.Context) {
	http.SetCookie(c.Writer, cfg.cookie("", -1))
}

func (cfg CookieConfig) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

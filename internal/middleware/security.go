package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ContextCSPNonce holds the per-response nonce that inline scripts and
// styles in rendered pages must carry.
const ContextCSPNonce = "csp_nonce"

// SecurityHeaders sets the browser hardening headers and a nonce based
// Content-Security-Policy. Debug mode relaxes inline code and local
// origins for the dev servers; HSTS is only sent outside debug.
func SecurityHeaders(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce, err := newNonce()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to generate CSP nonce")
		}
		c.Set(ContextCSPNonce, nonce)

		c.Header("Content-Security-Policy", contentSecurityPolicy(nonce, debug))
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		if !debug {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

func contentSecurityPolicy(nonce string, debug bool) string {
	scriptSrc := []string{"'self'"}
	styleSrc := []string{"'self'"}
	if nonce != "" {
		scriptSrc = append(scriptSrc, "'nonce-"+nonce+"'")
		styleSrc = append(styleSrc, "'nonce-"+nonce+"'")
	}
	scriptSrc = append(scriptSrc, "https://cdn.jsdelivr.net")
	styleSrc = append(styleSrc, "https://fonts.googleapis.com")

	connectSrc := []string{"'self'", "https://api.openai.com", "https://generativelanguage.googleapis.com"}
	if debug {
		// A nonce disables 'unsafe-inline' in CSP2 browsers, older ones
		// still honour it.
		scriptSrc = append(scriptSrc, "'unsafe-inline'")
		styleSrc = append(styleSrc, "'unsafe-inline'")
		connectSrc = append(connectSrc, "http://localhost:3000", "http://localhost:8000", "http://127.0.0.1:8080")
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + strings.Join(scriptSrc, " "),
		"style-src " + strings.Join(styleSrc, " "),
		"img-src 'self' data: https://*",
		"font-src 'self' https://fonts.gstatic.com",
		"connect-src " + strings.Join(connectSrc, " "),
		"frame-src 'none'",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CSPNonce returns the nonce SecurityHeaders stored for this request.
func CSPNonce(c *gin.Context) string {
	return c.GetString(ContextCSPNonce)
}

// Package validation provides input validation helpers for the payment API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (256KB). Webhook payloads
// and verification requests are small; anything larger is abuse.
const MaxRequestSize = 256 << 10

var (
	// hexRegex validates hex strings (signatures)
	hexRegex = regexp.MustCompile(`^[a-fA-F0-9]+$`)
	// idRegex validates opaque identifiers from the gateway and our own stores
	idRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,128}$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidHex checks if a string is valid hex
func IsValidHex(s string) bool {
	return s != "" && hexRegex.MatchString(s)
}

// IsValidID checks that an identifier looks like an opaque gateway/store id
func IsValidID(s string) bool {
	return idRegex.MatchString(s)
}

// SanitizeString trims whitespace and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

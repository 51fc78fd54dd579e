// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartify/sim-backend/internal/i18n"
)

// I18nMiddleware picks the response language from the Accept-Language
// header. Only the first listed language counts; anything that is not
// Filipino resolves to English.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", negotiateLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func negotiateLanguage(header string) string {
	if header == "" {
		return i18n.DefaultLanguage
	}

	first := strings.TrimSpace(strings.Split(header, ",")[0])
	first = strings.Split(first, ";")[0]

	switch strings.ToLower(strings.Split(first, "-")[0]) {
	case "fil", "tl":
		return "fil"
	default:
		return i18n.DefaultLanguage
	}
}

// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")

		if lang != "" {
			// Handle cases like "ar,en;q=0.9" or "ar-SA"
			langs := strings.Split(lang, ",")
			if len(langs) > 0 {
				firstLang := strings.TrimSpace(strings.Split(langs[0], ";")[0])
				switch {
				case firstLang == "ar" || strings.HasPrefix(firstLang, "ar-"):
					lang = "ar"
				case firstLang == "en" || strings.HasPrefix(firstLang, "en-"):
					lang = "en"
				default:
					lang = "en"
				}
			}
		} else {
			lang = "en"
		}

		c.Set("lang", lang)
		c.Next()
	}
}

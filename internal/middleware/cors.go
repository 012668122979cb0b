package middleware

import (
	"strings"

	"ckan-go/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	corsMethods = []string{"POST", "PUT", "GET", "DELETE", "OPTIONS"}
	corsHeaders = []string{"X-CKAN-API-KEY", "Authorization", "Content-Type"}
)

// CORS 跨域中间件，来源由 ckan.cors.origin_allow_all / ckan.cors.origin_whitelist 控制
func CORS(cors config.CORSSettings) gin.HandlerFunc {
	origins := cors.Origins()
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, o := range origins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
			c.Header("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

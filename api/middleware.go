package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// bearerAuth rejects requests without a valid signed bearer token.
func bearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			slog.Warn("Rejected unauthenticated request.", "path", c.Request.URL.Path, "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := ParseToken(token, secret)
		if err != nil {
			slog.Warn("Rejected invalid token.", "path", c.Request.URL.Path, "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedAuth
	}
	return parts[1], nil
}

// requestLogger logs one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			slog.Error("Request failed.", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			slog.Warn("Request rejected.", attrs...)
		default:
			slog.Info("Request served.", attrs...)
		}
	}
}

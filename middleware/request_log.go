package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MohamedH1998/onbored-sub001/logging"
)

// RequestLogger logs one line per request at a level chosen by status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		log := logging.Logger()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.Str("method", strings.ToUpper(c.Request.Method)).
			Str("path", path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds())
		if userID := c.GetString("user_id"); userID != "" {
			ev = ev.Str("user_id", userID)
		}
		if projectID := c.Param("projectId"); projectID != "" {
			ev = ev.Str("project_id", projectID)
		}
		ev.Msg("HTTP request")
	}
}

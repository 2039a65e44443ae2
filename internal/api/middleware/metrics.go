package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/medal-board-api/internal/metrics"
)

// Metrics records one observation per request, labelled by the route
// template so ids do not explode cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(ctx.Request.Method, route, ctx.Writer.Status(), time.Since(start))
	}
}

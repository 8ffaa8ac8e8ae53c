package middleware

import (
	"strconv"
	"time"

	"bizsuite/internal/logger"
	"bizsuite/internal/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger attaches a request-scoped zap logger to the context and logs each request.
// It must run after echo's RequestID middleware.
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			ctx := logger.WithRequestID(req.Context(), base, requestID)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// lets the status below reflect the rendered error
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.String("uri", req.RequestURI),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			log := logger.FromContext(c.Request().Context())
			switch {
			case status >= 500:
				log.Error("request failed", append(fields, zap.Error(err))...)
			case status >= 400:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request handled", fields...)
			}
			return nil
		}
	}
}

// Metrics records request counts and latency by route template
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = httpErr.Code
			}
			m.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

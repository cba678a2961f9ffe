package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
)

// roleKey is the echo.Context key holding the caller's API key role.
const roleKey = "apiRole"

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accountkeeper",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accountkeeper",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe records metrics and a debug log line for every request. Errors are
// rendered here so the final status is known.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		status := c.Response().Status

		s.metrics.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		s.logger.Debug(c.Request().Context(), "http request",
			"method", method, "route", route, "status", status, "duration", time.Since(start))
		return nil
	}
}

// callerRole returns the role of the API key that authenticated c.
func callerRole(c echo.Context) string {
	role, _ := c.Get(roleKey).(string)
	return role
}

// requireAPIKey accepts the key from the apikey header, or from a bearer
// Authorization header.
func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(common.APIKeyHeaderName)
		if key == "" {
			h := c.Request().Header.Get(common.AuthorizationHeaderName)
			if after, ok := strings.CutPrefix(h, "Bearer "); ok {
				key = after
			}
		}
		if key == "" {
			return &apiError{Status: http.StatusUnauthorized, Code: codeBadJWT, Message: "No API key found in request"}
		}

		role, err := auth.ParseAPIKey(key, s.jwtSecret)
		if err != nil {
			return err
		}
		c.Set(roleKey, role)
		return next(c)
	}
}

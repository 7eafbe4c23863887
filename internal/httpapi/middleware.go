package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const apiKeyHeader = "X-API-Key"

// requireAPIKey rejects requests without a valid key when API_KEY_HASH is set.
func (s *Server) requireAPIKey() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.deps.Keys.Enabled() {
				return next(c)
			}
			if !s.deps.Keys.Verify(apiKeyFromRequest(c.Request())) {
				return fail(c, http.StatusUnauthorized, "Invalid or missing API key", nil)
			}
			return next(c)
		}
	}
}

func apiKeyFromRequest(req *http.Request) string {
	if key := strings.TrimSpace(req.Header.Get(apiKeyHeader)); key != "" {
		return key
	}
	authz := strings.TrimSpace(req.Header.Get("Authorization"))
	if len(authz) > len("Bearer ") && strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return ""
}

package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/qtix/ticket-gateway/internal/audit"
)

// listEventsHandler serves the recent processing trail for operators.
func listEventsHandler(trail audit.Trail) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		events, err := trail.Recent(c.Request().Context(), limit, offset)
		if err != nil {
			c.Logger().Errorf("audit list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(events),
			"results": events,
		})
	}
}

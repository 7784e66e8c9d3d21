package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

func timeoutCtx(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), d)
}

// HealthHandler answers liveness probes with a database ping.
type HealthHandler struct{ DB *sql.DB }

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

func (h *HealthHandler) Check(c echo.Context) error {
    ctx, cancel := timeoutCtx(c, 2*time.Second)
    defer cancel()
    if err := h.DB.PingContext(ctx); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": "database unreachable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

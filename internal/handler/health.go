package handler // declare the package name; contains HTTP handlers

import (
    "net/http"          // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project

    "github.com/iliyamo/hotel-rate-configurator/internal/service" // service owns the loaded configuration
)

// Health is a liveness endpoint used by load balancers and monitoring
// systems.  It returns a plain text "ok" with HTTP 200.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports 200 once the configurator holds a store and 503 before
// bootstrap has finished.
func Ready(svc *service.Configurator) echo.HandlerFunc {
    return func(c echo.Context) error {
        if svc == nil || svc.Snapshot() == nil { // nothing loaded yet
            return c.String(http.StatusServiceUnavailable, "loading")
        }
        return c.String(http.StatusOK, "ready")
    }
}

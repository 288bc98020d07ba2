package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/pricing"
	"github.com/iliyamo/hotel-rate-configurator/internal/service"
)

// statusOf maps domain errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrRateNotFound),
		errors.Is(err, model.ErrRoomNotFound),
		errors.Is(err, model.ErrOptionNotFound),
		errors.Is(err, model.ErrDateNotFound),
		errors.Is(err, model.ErrClusterNotFound),
		errors.Is(err, model.ErrPolicyNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAnchorRoom):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotSourceRate), errors.Is(err, pricing.ErrCyclicDerivation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...}.  Internal errors are not echoed back;
// persistence failures get a fixed message.
func fail(c echo.Context, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
		if errors.Is(err, service.ErrPersist) {
			msg = "save failed"
		}
		c.Logger().Error(err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/pricing"
	"github.com/iliyamo/hotel-rate-configurator/internal/service"
)

// StoreHandler serves the rate grid and every edit of it.  Reads price the
// configurator's current snapshot; writes go through Configurator.Mutate.
type StoreHandler struct {
	Svc *service.Configurator
	// Now dates a reset calendar when the request names no start.
	Now func() time.Time
}

func NewStoreHandler(svc *service.Configurator) *StoreHandler {
	if svc == nil {
		panic("nil configurator passed to NewStoreHandler")
	}
	return &StoreHandler{Svc: svc, Now: time.Now}
}

// mutate runs fn against the store under a bounded context.
func (h *StoreHandler) mutate(c echo.Context, kind string, fn func(s *model.Store) error) (*model.Store, error) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	return h.Svc.Mutate(ctx, kind, fn)
}

// cellQuery addresses a grid cell.  Dates travel in the query string because
// calendar labels such as "Fri, May 3" do not fit in a path segment.
type cellQuery struct {
	Rate   string `query:"rate"`
	Room   string `query:"room"`
	Option string `query:"option"`
	Date   string `query:"date"`
}

// GetStore handles GET /v1/store and returns the raw snapshot.
func (h *StoreHandler) GetStore(c echo.Context) error {
	b, err := model.EncodeSnapshot(h.Svc.Snapshot())
	if err != nil {
		return fail(c, err)
	}
	return c.JSONBlob(http.StatusOK, b)
}

// GetGrid handles GET /v1/grid.
func (h *StoreHandler) GetGrid(c echo.Context) error {
	return c.JSON(http.StatusOK, pricing.BuildGrid(h.Svc.Snapshot()))
}

// GetPrice handles GET /v1/price?rate=&room=&date=.
func (h *StoreHandler) GetPrice(c echo.Context) error {
	var q cellQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if blank(q.Rate, q.Room, q.Date) {
		return badRequest(c, "rate, room and date are required")
	}
	quote, err := pricing.NewResolver(h.Svc.Snapshot()).RoomPrice(q.Rate, q.Room, q.Date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// GetOptionPrice handles GET /v1/price/option?rate=&room=&option=&date=.
func (h *StoreHandler) GetOptionPrice(c echo.Context) error {
	var q cellQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if blank(q.Rate, q.Room, q.Option, q.Date) {
		return badRequest(c, "rate, room, option and date are required")
	}
	quote, err := pricing.NewResolver(h.Svc.Snapshot()).OptionPrice(q.Rate, q.Room, q.Option, q.Date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// GetRestriction handles GET /v1/restrictions?rate=&date=.
func (h *StoreHandler) GetRestriction(c echo.Context) error {
	var q cellQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if blank(q.Rate, q.Date) {
		return badRequest(c, "rate and date are required")
	}
	r, err := pricing.NewResolver(h.Svc.Snapshot()).Restriction(q.Rate, q.Date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// GetPolicy handles GET /v1/policy?rate=&date= and returns the policy in
// force, or 404 when the rate has none.
func (h *StoreHandler) GetPolicy(c echo.Context) error {
	var q cellQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if blank(q.Rate) {
		return badRequest(c, "rate is required")
	}
	s := h.Svc.Snapshot()
	rate, ok := s.Rate(q.Rate)
	if !ok {
		return fail(c, model.ErrRateNotFound)
	}
	cp, ok := pricing.EffectivePolicy(s, rate, q.Date)
	if !ok {
		return fail(c, model.ErrPolicyNotFound)
	}
	return c.JSON(http.StatusOK, cp)
}

// Preview handles GET /v1/preview?rate=&room=&anchor= and prices a room
// against an arbitrary anchor value, 100 by default.
func (h *StoreHandler) Preview(c echo.Context) error {
	var q cellQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if blank(q.Rate, q.Room) {
		return badRequest(c, "rate and room are required")
	}
	anchor := float64(pricing.PreviewAnchor)
	if raw := strings.TrimSpace(c.QueryParam("anchor")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !model.Finite(v) {
			return badRequest(c, "invalid anchor")
		}
		anchor = v
	}
	price, err := pricing.NewResolver(h.Svc.Snapshot()).Preview(q.Rate, q.Room, anchor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"anchor": anchor, "price": price})
}

func blank(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// maxCalendarDays bounds a calendar reset.
const maxCalendarDays = 366

// CreateCluster handles POST /v1/clusters.
func (h *StoreHandler) CreateCluster(c echo.Context) error {
	var body struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var out model.Cluster
	if _, err := h.mutate(c, "cluster_add", func(s *model.Store) (err error) {
		out, err = s.AddCluster(body.Name, body.Color)
		return err
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// CreateRoom handles POST /v1/rooms.
func (h *StoreHandler) CreateRoom(c echo.Context) error {
	var body struct {
		Name      string `json:"name"`
		Code      string `json:"code"`
		ClusterID string `json:"clusterId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var out model.RoomType
	if _, err := h.mutate(c, "room_add", func(s *model.Store) (err error) {
		out, err = s.AddRoom(body.Name, body.Code, body.ClusterID)
		return err
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// DeleteRoom handles DELETE /v1/rooms/:id.  The anchor room answers 409.
func (h *StoreHandler) DeleteRoom(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.mutate(c, "room_delete", func(s *model.Store) error {
		return s.DeleteRoom(id)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateOption handles POST /v1/rooms/:id/options.
func (h *StoreHandler) CreateOption(c echo.Context) error {
	var body struct {
		RoomID string      `param:"id"`
		Name   string      `json:"name"`
		Delta  model.Delta `json:"delta"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var out model.RoomOption
	if _, err := h.mutate(c, "option_add", func(s *model.Store) (err error) {
		out, err = s.AddOption(body.RoomID, body.Name, body.Delta)
		return err
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type optionDeltaReq struct {
	RoomID   string `param:"id"`
	OptionID string `param:"option"`
	deltaInput
}

// PutOptionDelta handles PUT /v1/rooms/:id/options/:option/delta.  Like a
// supplement, type and value can be edited separately.
func (h *StoreHandler) PutOptionDelta(c echo.Context) error {
	var req optionDeltaReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.empty() {
		return badRequest(c, "type or value is required")
	}
	s, err := h.mutate(c, "option_delta", func(s *model.Store) error {
		if req.Type != "" && req.Value.set {
			d, err := req.full()
			if err != nil {
				return err
			}
			return s.SetOptionDelta(req.RoomID, req.OptionID, d)
		}
		if req.Type != "" {
			t, err := model.ParseDeltaType(req.Type)
			if err != nil {
				return err
			}
			return s.SetOptionDeltaType(req.RoomID, req.OptionID, t)
		}
		v, _ := req.Value.parse()
		return s.SetOptionDeltaValue(req.RoomID, req.OptionID, v)
	})
	if err != nil {
		return fail(c, err)
	}
	room, _ := s.Room(req.RoomID)
	opt, _ := room.Option(req.OptionID)
	return c.JSON(http.StatusOK, opt.Delta)
}

// CreateRate handles POST /v1/rates.
func (h *StoreHandler) CreateRate(c echo.Context) error {
	var body struct {
		Code     string      `json:"code"`
		Name     string      `json:"name"`
		Type     string      `json:"type"`
		ParentID string      `json:"parentId"`
		Rule     model.Delta `json:"rule"`
		PolicyID string      `json:"policyId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	in := model.NewRate{
		Code:     body.Code,
		Name:     body.Name,
		Type:     model.RateType(strings.ToLower(strings.TrimSpace(body.Type))),
		ParentID: body.ParentID,
		Rule:     body.Rule,
		PolicyID: body.PolicyID,
	}
	var out model.RatePlan
	if _, err := h.mutate(c, "rate_add", func(s *model.Store) (err error) {
		out, err = s.AddRate(in)
		return err
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// DeleteRate handles DELETE /v1/rates/:id.  Rates derived from it fall back
// to the anchor price.
func (h *StoreHandler) DeleteRate(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.mutate(c, "rate_delete", func(s *model.Store) error {
		return s.DeleteRate(id)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreatePolicy handles POST /v1/policies.
func (h *StoreHandler) CreatePolicy(c echo.Context) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var out model.CancellationPolicy
	if _, err := h.mutate(c, "policy_add", func(s *model.Store) (err error) {
		out, err = s.AddPolicy(body.Name, body.Description)
		return err
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type dateValueReq struct {
	Date  string `json:"date" query:"date"`
	Value amount `json:"value"`
}

// PutAnchorRate handles PUT /v1/anchor-rates.  A blank value clears the
// explicit anchor so the day's base rate applies again.
func (h *StoreHandler) PutAnchorRate(c echo.Context) error {
	var req dateValueReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, clear := req.Value.parse()
	if _, err := h.mutate(c, "anchor_rate", func(s *model.Store) error {
		if clear {
			return s.ClearAnchorRate(req.Date)
		}
		return s.SetAnchorRate(req.Date, v)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAnchorRate handles DELETE /v1/anchor-rates?date=.
func (h *StoreHandler) DeleteAnchorRate(c echo.Context) error {
	var req dateValueReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	if _, err := h.mutate(c, "anchor_rate", func(s *model.Store) error {
		return s.ClearAnchorRate(req.Date)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PutBaseRate handles PUT /v1/days/base.  Without a date the value becomes
// the base rate of every day.  Blank reads as 0.
func (h *StoreHandler) PutBaseRate(c echo.Context) error {
	var req dateValueReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, _ := req.Value.parse()
	if _, err := h.mutate(c, "base_rate", func(s *model.Store) error {
		if strings.TrimSpace(req.Date) == "" {
			s.SetGlobalBase(v)
			return nil
		}
		return s.SetDailyBase(req.Date, v)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PutBarRoom handles PUT /v1/bar-room.
func (h *StoreHandler) PutBarRoom(c echo.Context) error {
	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.mutate(c, "bar_room", func(s *model.Store) error {
		return s.SetBarRoom(body.RoomID)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PutPricingModel handles PUT /v1/pricing-model.
func (h *StoreHandler) PutPricingModel(c echo.Context) error {
	var body struct {
		Model string `json:"model"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.mutate(c, "pricing_model", func(s *model.Store) error {
		return s.SetPricingModel(model.PricingModel(body.Model))
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetCalendar handles POST /v1/calendar.  start is YYYY-MM-DD and defaults
// to today; days defaults to the configurator's calendar length.
func (h *StoreHandler) ResetCalendar(c echo.Context) error {
	var body struct {
		Start string `json:"start"`
		Days  int    `json:"days"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	start := h.Now()
	if strings.TrimSpace(body.Start) != "" {
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(body.Start))
		if err != nil {
			return badRequest(c, "start must be YYYY-MM-DD")
		}
		start = t
	}
	days := body.Days
	if days == 0 {
		days = h.Svc.CalendarDays()
	}
	if days < 1 || days > maxCalendarDays {
		return badRequest(c, "days must be between 1 and 366")
	}
	s, err := h.mutate(c, "calendar", func(s *model.Store) error {
		s.ResetCalendar(start, days)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s.Days)
}

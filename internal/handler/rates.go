package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/pricing"
)

type overrideReq struct {
	RateID string `param:"id"`
	Room   string `json:"room" query:"room"`
	Option string `json:"option" query:"option"`
	Date   string `json:"date" query:"date"`
	Value  amount `json:"value"`
}

// PutOverride handles PUT /v1/rates/:id/overrides.  A blank value clears
// the override.  The response is the cell's new price.
func (h *StoreHandler) PutOverride(c echo.Context) error {
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, clear := req.Value.parse()
	s, err := h.mutate(c, "override", func(s *model.Store) error {
		if clear {
			return s.ClearOverride(req.RateID, req.Room, req.Date)
		}
		return s.SetOverride(req.RateID, req.Room, req.Date, v)
	})
	if err != nil {
		return fail(c, err)
	}
	return h.roomQuote(c, s, req.RateID, req.Room, req.Date)
}

// DeleteOverride handles DELETE /v1/rates/:id/overrides?room=&date=.
func (h *StoreHandler) DeleteOverride(c echo.Context) error {
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	s, err := h.mutate(c, "override", func(s *model.Store) error {
		return s.ClearOverride(req.RateID, req.Room, req.Date)
	})
	if err != nil {
		return fail(c, err)
	}
	return h.roomQuote(c, s, req.RateID, req.Room, req.Date)
}

// PutOptionOverride handles PUT /v1/rates/:id/option-overrides.
func (h *StoreHandler) PutOptionOverride(c echo.Context) error {
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, clear := req.Value.parse()
	s, err := h.mutate(c, "option_override", func(s *model.Store) error {
		if clear {
			return s.ClearOptionOverride(req.RateID, req.Room, req.Option, req.Date)
		}
		return s.SetOptionOverride(req.RateID, req.Room, req.Option, req.Date, v)
	})
	if err != nil {
		return fail(c, err)
	}
	return h.optionQuote(c, s, req.RateID, req.Room, req.Option, req.Date)
}

// DeleteOptionOverride handles DELETE /v1/rates/:id/option-overrides?room=&option=&date=.
func (h *StoreHandler) DeleteOptionOverride(c echo.Context) error {
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	s, err := h.mutate(c, "option_override", func(s *model.Store) error {
		return s.ClearOptionOverride(req.RateID, req.Room, req.Option, req.Date)
	})
	if err != nil {
		return fail(c, err)
	}
	return h.optionQuote(c, s, req.RateID, req.Room, req.Option, req.Date)
}

type supplementReq struct {
	RateID string `param:"id"`
	RoomID string `param:"room"`
	deltaInput
}

// PutSupplement handles PUT /v1/rates/:id/supplements/:room.  Sending only
// type or only value edits that half of the supplement.
func (h *StoreHandler) PutSupplement(c echo.Context) error {
	var req supplementReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.empty() {
		return badRequest(c, "type or value is required")
	}
	s, err := h.mutate(c, "supplement", func(s *model.Store) error {
		if req.Type != "" {
			t, err := model.ParseDeltaType(req.Type)
			if err != nil {
				return err
			}
			if err := s.SetSupplementType(req.RateID, req.RoomID, t); err != nil {
				return err
			}
		}
		if req.Value.set {
			v, _ := req.Value.parse()
			return s.SetSupplementValue(req.RateID, req.RoomID, v)
		}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	rate, _ := s.Rate(req.RateID)
	return c.JSON(http.StatusOK, rate.Supplement(req.RoomID))
}

// DeleteSupplement handles DELETE /v1/rates/:id/supplements/:room.
func (h *StoreHandler) DeleteSupplement(c echo.Context) error {
	var req supplementReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if _, err := h.mutate(c, "supplement", func(s *model.Store) error {
		return s.ClearSupplement(req.RateID, req.RoomID)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type restrictionReq struct {
	RateID   string `param:"id"`
	Date     string `json:"date" query:"date"`
	StopSell bool   `json:"stopSell"`
	CTA      bool   `json:"cta"`
	CTD      bool   `json:"ctd"`
	MinLOS   int    `json:"minLos"`
}

// PutRestriction handles PUT /v1/rates/:id/restrictions.
func (h *StoreHandler) PutRestriction(c echo.Context) error {
	var req restrictionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	r := model.Restriction{StopSell: req.StopSell, CTA: req.CTA, CTD: req.CTD, MinLOS: req.MinLOS}
	s, err := h.mutate(c, "restriction", func(s *model.Store) error {
		return s.SetRestriction(req.RateID, req.Date, r)
	})
	if err != nil {
		return fail(c, err)
	}
	return h.restriction(c, s, req.RateID, req.Date)
}

// DeleteRestriction handles DELETE /v1/rates/:id/restrictions?date=.
func (h *StoreHandler) DeleteRestriction(c echo.Context) error {
	var req restrictionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	s, err := h.mutate(c, "restriction", func(s *model.Store) error {
		return s.ClearRestriction(req.RateID, req.Date)
	})
	if err != nil {
		return fail(c, err)
	}
	return h.restriction(c, s, req.RateID, req.Date)
}

type basePriceReq struct {
	RateID string `param:"id"`
	RoomID string `param:"room"`
	Option string `json:"option" query:"option"`
	Room   string `json:"room" query:"room"`
	Value  amount `json:"value"`
}

// PutBasePrice handles PUT /v1/rates/:id/base-prices/:room, the configured
// room price of the exact pricing model.  A blank value clears it.
func (h *StoreHandler) PutBasePrice(c echo.Context) error {
	var req basePriceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, clear := req.Value.parse()
	if _, err := h.mutate(c, "base_price", func(s *model.Store) error {
		if clear {
			return s.ClearBasePrice(req.RateID, req.RoomID)
		}
		return s.SetBasePrice(req.RateID, req.RoomID, v)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteBasePrice handles DELETE /v1/rates/:id/base-prices/:room.
func (h *StoreHandler) DeleteBasePrice(c echo.Context) error {
	var req basePriceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if _, err := h.mutate(c, "base_price", func(s *model.Store) error {
		return s.ClearBasePrice(req.RateID, req.RoomID)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PutOptionPrice handles PUT /v1/rates/:id/option-prices with room and
// option in the body.
func (h *StoreHandler) PutOptionPrice(c echo.Context) error {
	var req basePriceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, clear := req.Value.parse()
	if _, err := h.mutate(c, "option_price", func(s *model.Store) error {
		if clear {
			return s.ClearOptionPrice(req.RateID, req.Room, req.Option)
		}
		return s.SetOptionPrice(req.RateID, req.Room, req.Option, v)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteOptionPrice handles DELETE /v1/rates/:id/option-prices?room=&option=.
func (h *StoreHandler) DeleteOptionPrice(c echo.Context) error {
	var req basePriceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	if _, err := h.mutate(c, "option_price", func(s *model.Store) error {
		return s.ClearOptionPrice(req.RateID, req.Room, req.Option)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type policyReq struct {
	RateID   string `param:"id"`
	Date     string `json:"date" query:"date"`
	PolicyID string `json:"policyId"`
}

// PutRatePolicy handles PUT /v1/rates/:id/policy.  An empty policyId
// removes the default policy.
func (h *StoreHandler) PutRatePolicy(c echo.Context) error {
	var req policyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.mutate(c, "rate_policy", func(s *model.Store) error {
		return s.SetRatePolicy(req.RateID, req.PolicyID)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PutPolicyOverride handles PUT /v1/rates/:id/policy-overrides.
func (h *StoreHandler) PutPolicyOverride(c echo.Context) error {
	var req policyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.mutate(c, "policy_override", func(s *model.Store) error {
		return s.SetPolicyOverride(req.RateID, req.Date, req.PolicyID)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeletePolicyOverride handles DELETE /v1/rates/:id/policy-overrides?date=.
func (h *StoreHandler) DeletePolicyOverride(c echo.Context) error {
	var req policyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid query")
	}
	if _, err := h.mutate(c, "policy_override", func(s *model.Store) error {
		return s.ClearPolicyOverride(req.RateID, req.Date)
	}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StoreHandler) roomQuote(c echo.Context, s *model.Store, rateID, roomID, date string) error {
	q, err := pricing.NewResolver(s).RoomPrice(rateID, roomID, date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *StoreHandler) optionQuote(c echo.Context, s *model.Store, rateID, roomID, optionID, date string) error {
	q, err := pricing.NewResolver(s).OptionPrice(rateID, roomID, optionID, date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *StoreHandler) restriction(c echo.Context, s *model.Store, rateID, date string) error {
	r, err := pricing.NewResolver(s).Restriction(rateID, date)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/pricing"
	"github.com/iliyamo/hotel-rate-configurator/internal/repository"
	"github.com/iliyamo/hotel-rate-configurator/internal/service"
)

// 2024-05-01 is a Wednesday, so the calendar starts at "Wed, May 1" and
// "Fri, May 3" is the first weekend night.
var testNow = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

const wed = "Wed, May 1"

type testServer struct {
	e    *echo.Echo
	repo *repository.MemoryStoreRepo
	svc  *service.Configurator
}

func newTestServer(t *testing.T, seed *model.Store) *testServer {
	t.Helper()
	repo := repository.NewMemoryStoreRepo()
	if seed != nil {
		require.NoError(t, repo.Save(context.Background(), seed))
	}
	svc := service.NewConfigurator(repo, nil, zap.NewNop(), service.Options{
		PropertyID: "test",
		Now:        func() time.Time { return testNow },
	})
	require.NoError(t, svc.Bootstrap(context.Background()))

	h := NewStoreHandler(svc)
	h.Now = func() time.Time { return testNow }
	e := echo.New()
	v1 := e.Group("/v1")
	v1.GET("/store", h.GetStore)
	v1.GET("/grid", h.GetGrid)
	v1.GET("/price", h.GetPrice)
	v1.GET("/price/option", h.GetOptionPrice)
	v1.GET("/restrictions", h.GetRestriction)
	v1.GET("/policy", h.GetPolicy)
	v1.GET("/preview", h.Preview)
	v1.PUT("/rates/:id/overrides", h.PutOverride)
	v1.DELETE("/rates/:id/overrides", h.DeleteOverride)
	v1.PUT("/rates/:id/option-overrides", h.PutOptionOverride)
	v1.PUT("/rates/:id/supplements/:room", h.PutSupplement)
	v1.DELETE("/rates/:id/supplements/:room", h.DeleteSupplement)
	v1.PUT("/rates/:id/restrictions", h.PutRestriction)
	v1.PUT("/rates/:id/base-prices/:room", h.PutBasePrice)
	v1.PUT("/rates/:id/policy-overrides", h.PutPolicyOverride)
	v1.POST("/rooms", h.CreateRoom)
	v1.DELETE("/rooms/:id", h.DeleteRoom)
	v1.POST("/rooms/:id/options", h.CreateOption)
	v1.PUT("/rooms/:id/options/:option/delta", h.PutOptionDelta)
	v1.POST("/rates", h.CreateRate)
	v1.DELETE("/rates/:id", h.DeleteRate)
	v1.PUT("/anchor-rates", h.PutAnchorRate)
	v1.PUT("/days/base", h.PutBaseRate)
	v1.PUT("/pricing-model", h.PutPricingModel)
	v1.POST("/calendar", h.ResetCalendar)
	return &testServer{e: e, repo: repo, svc: svc}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func query(kv ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return "?" + v.Encode()
}

func decodeQuote(t *testing.T, rec *httptest.ResponseRecorder) pricing.Quote {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var q pricing.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	return q
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestGetGridAndStore(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/v1/grid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var g pricing.Grid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Len(t, g.Dates, model.DefaultCalendarDays)
	assert.Equal(t, wed, g.Dates[0])
	assert.Len(t, g.Rates, 3)

	rec = ts.do(http.MethodGet, "/v1/store", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s, err := model.DecodeSnapshot(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "r1", s.BarRoomID)
}

func TestGetPrice(t *testing.T) {
	ts := newTestServer(t, nil)

	q := decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p1", "room", "r2", "date", wed), ""))
	assert.Equal(t, 110.0, q.Price)
	assert.Equal(t, pricing.OriginSupplement, q.Origin)

	q = decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p3", "room", "r1", "date", wed), ""))
	assert.InDelta(t, 85.5, q.Price, 1e-9)

	rec := ts.do(http.MethodGet, "/v1/price"+query("rate", "p1", "room", "r2"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/v1/price"+query("rate", "nope", "room", "r2", "date", wed), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	q = decodeQuote(t, ts.do(http.MethodGet, "/v1/price/option"+query("rate", "p1", "room", "r2", "option", "o5", "date", wed), ""))
	assert.Equal(t, 130.0, q.Price)
}

func TestPutOverrideFeedsDerivedRates(t *testing.T) {
	ts := newTestServer(t, nil)
	saves := ts.repo.Saves()

	body := fmt.Sprintf(`{"room":"r2","date":%q,"value":"120"}`, wed)
	q := decodeQuote(t, ts.do(http.MethodPut, "/v1/rates/p1/overrides", body))
	assert.Equal(t, 120.0, q.Price)
	assert.True(t, q.Overridden)
	assert.Equal(t, saves+1, ts.repo.Saves())

	q = decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p2", "room", "r2", "date", wed), ""))
	assert.InDelta(t, 108, q.Price, 1e-9)

	// A blank value clears the override.
	body = fmt.Sprintf(`{"room":"r2","date":%q,"value":""}`, wed)
	q = decodeQuote(t, ts.do(http.MethodPut, "/v1/rates/p1/overrides", body))
	assert.Equal(t, 110.0, q.Price)
	assert.False(t, q.Overridden)

	// Numbers are accepted as well as strings.
	body = fmt.Sprintf(`{"room":"r2","date":%q,"value":99.5}`, wed)
	q = decodeQuote(t, ts.do(http.MethodPut, "/v1/rates/p1/overrides", body))
	assert.Equal(t, 99.5, q.Price)

	q = decodeQuote(t, ts.do(http.MethodDelete, "/v1/rates/p1/overrides"+query("room", "r2", "date", wed), ""))
	assert.Equal(t, 110.0, q.Price)
}

func TestPutOverrideCoercesNonFiniteToZero(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, raw := range []string{"Infinity", "NaN", "-inf"} {
		body := fmt.Sprintf(`{"room":"r2","date":%q,"value":%q}`, wed, raw)
		q := decodeQuote(t, ts.do(http.MethodPut, "/v1/rates/p1/overrides", body))
		assert.Zero(t, q.Price, raw)
		assert.True(t, q.Overridden, raw)
	}
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/v1/store", "").Code)
}

func TestPutOverrideRejectsUnknownDate(t *testing.T) {
	ts := newTestServer(t, nil)
	saves := ts.repo.Saves()

	rec := ts.do(http.MethodPut, "/v1/rates/p1/overrides", `{"room":"r2","date":"Sun, Jan 1","value":"120"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, saves, ts.repo.Saves(), "a failed edit is not saved")

	rec = ts.do(http.MethodPut, "/v1/rates/p1/overrides", `{"room":"r2",`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptionOverride(t *testing.T) {
	ts := newTestServer(t, nil)
	body := fmt.Sprintf(`{"room":"r2","option":"o5","date":%q,"value":"125"}`, wed)
	q := decodeQuote(t, ts.do(http.MethodPut, "/v1/rates/p2/option-overrides", body))
	assert.Equal(t, 125.0, q.Price)
	assert.True(t, q.Overridden)
}

func TestPutSupplement(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPut, "/v1/rates/p1/supplements/r2", `{"type":"percent"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d model.Delta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, model.Percent(10), d)

	q := decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p1", "room", "r2", "date", wed), ""))
	assert.InDelta(t, 110, q.Price, 1e-9)

	rec = ts.do(http.MethodPut, "/v1/rates/p1/supplements/r2", `{"value":"-15"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, model.Percent(-15), d)

	rec = ts.do(http.MethodPut, "/v1/rates/p2/supplements/r2", `{"value":"5"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "derived rates carry no supplements")

	rec = ts.do(http.MethodPut, "/v1/rates/p1/supplements/r2", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/v1/rates/p1/supplements/r2", `{"type":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/v1/rates/p1/supplements/r2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	q = decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p1", "room", "r2", "date", wed), ""))
	assert.Equal(t, 100.0, q.Price)
}

func TestRestrictionsAndPolicy(t *testing.T) {
	ts := newTestServer(t, nil)

	body := fmt.Sprintf(`{"date":%q,"cta":true,"minLos":0}`, wed)
	rec := ts.do(http.MethodPut, "/v1/rates/p1/restrictions", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r model.Restriction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, model.Restriction{CTA: true, MinLOS: 1}, r)

	rec = ts.do(http.MethodGet, "/v1/restrictions"+query("rate", "p2", "date", wed), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, model.DefaultRestriction(), r, "restrictions are not inherited")

	rec = ts.do(http.MethodGet, "/v1/policy"+query("rate", "p2"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cp model.CancellationPolicy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cp))
	assert.Equal(t, "cp2", cp.ID)

	body = fmt.Sprintf(`{"date":%q,"policyId":"cp1"}`, wed)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/rates/p2/policy-overrides", body).Code)
	rec = ts.do(http.MethodGet, "/v1/policy"+query("rate", "p2", "date", wed), "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cp))
	assert.Equal(t, "cp1", cp.ID)

	body = fmt.Sprintf(`{"date":%q,"policyId":"cp9"}`, wed)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/v1/rates/p2/policy-overrides", body).Code)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/v1/preview"+query("rate", "p1", "room", "r3"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct{ Anchor, Price float64 }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 100.0, out.Anchor)
	assert.Equal(t, 130.0, out.Price)

	rec = ts.do(http.MethodGet, "/v1/preview"+query("rate", "p1", "room", "r3", "anchor", "200"), "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 230.0, out.Price)

	for _, anchor := range []string{"abc", "NaN", "Inf"} {
		rec = ts.do(http.MethodGet, "/v1/preview"+query("rate", "p1", "room", "r3", "anchor", anchor), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, anchor)
	}
}

func TestAnchorAndBaseRates(t *testing.T) {
	ts := newTestServer(t, nil)

	body := fmt.Sprintf(`{"date":%q,"value":"0"}`, wed)
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/anchor-rates", body).Code)
	q := decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p1", "room", "r1", "date", wed), ""))
	assert.Zero(t, q.Price, "an explicit anchor of 0 wins over the base rate")

	body = fmt.Sprintf(`{"date":%q,"value":null}`, wed)
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/anchor-rates", body).Code)
	q = decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p1", "room", "r1", "date", wed), ""))
	assert.Equal(t, 100.0, q.Price)

	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/days/base", `{"value":"80"}`).Code)
	for _, d := range ts.svc.Snapshot().Days {
		assert.Equal(t, 80.0, d.BaseRate)
	}
	body = fmt.Sprintf(`{"date":%q,"value":"90"}`, wed)
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/days/base", body).Code)
	day, _ := ts.svc.Snapshot().Day(wed)
	assert.Equal(t, 90.0, day.BaseRate)
}

func TestCatalogueEdits(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodDelete, "/v1/rooms/r1", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "the anchor room cannot be deleted")
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/v1/rooms/r7", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/v1/rooms/r7", "").Code)

	rec = ts.do(http.MethodPost, "/v1/rooms", `{"name":"Loft","code":"LFT","clusterId":"c1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var room model.RoomType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.True(t, strings.HasPrefix(room.ID, "r-"))

	rec = ts.do(http.MethodPost, "/v1/rooms/"+room.ID+"/options", `{"name":"Terrace","delta":{"type":"percent","value":5}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var opt model.RoomOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opt))
	assert.Equal(t, model.Percent(5), opt.Delta)

	rec = ts.do(http.MethodPut, "/v1/rooms/"+room.ID+"/options/"+opt.ID+"/delta", `{"type":"fixed","value":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d model.Delta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, model.Fixed(12), d)

	rec = ts.do(http.MethodPut, "/v1/rooms/"+room.ID+"/options/"+opt.ID+"/delta", `{"value":"20"}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, model.Fixed(20), d)

	rec = ts.do(http.MethodPost, "/v1/rooms", `{"name":"Loft","code":"LFT","clusterId":"c9"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndDeleteRate(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/v1/rates", `{"code":"MEM","name":"Members","type":"derived","parentId":"p1","rule":{"type":"percent","value":-20}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		ParentID string `json:"parentId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "derived", out.Type)
	assert.Equal(t, "p1", out.ParentID)

	q := decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", out.ID, "room", "r1", "date", wed), ""))
	assert.InDelta(t, 80, q.Price, 1e-9)

	rec = ts.do(http.MethodPost, "/v1/rates", `{"code":"X","name":"X","type":"derived","parentId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodPost, "/v1/rates", `{"code":"X","name":"X","type":"weird"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Deleting the parent leaves the child priced from the anchor.
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/v1/rates/p1", "").Code)
	q = decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", out.ID, "room", "r1", "date", wed), ""))
	assert.Equal(t, 100.0, q.Price)
	assert.True(t, q.Degraded)
}

func TestExactPricing(t *testing.T) {
	ts := newTestServer(t, nil)

	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/pricing-model", `{"model":"exact"}`).Code)
	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/v1/rates/p2/base-prices/r2", `{"value":"175"}`).Code)
	q := decodeQuote(t, ts.do(http.MethodGet, "/v1/price"+query("rate", "p2", "room", "r2", "date", wed), ""))
	assert.Equal(t, 175.0, q.Price)
	assert.Equal(t, pricing.OriginConfigured, q.Origin)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/v1/pricing-model", `{"model":"auction"}`).Code)
}

func TestCyclicChainAnswers422(t *testing.T) {
	seed := model.DefaultStore()
	p2, _ := seed.Rate("p2")
	p2.ParentID = "p3"
	ts := newTestServer(t, seed)

	rec := ts.do(http.MethodGet, "/v1/price"+query("rate", "p3", "room", "r1", "date", wed), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorOf(t, rec), "cyclic rate derivation")

	// The grid still renders, with the broken cells flagged.
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/v1/grid", "").Code)
}

func TestPersistFailureKeepsSnapshot(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.repo.FailSave = errors.New("disk full")

	body := fmt.Sprintf(`{"date":%q,"value":"300"}`, wed)
	rec := ts.do(http.MethodPut, "/v1/anchor-rates", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "save failed", errorOf(t, rec))

	_, ok := ts.svc.Snapshot().AnchorRate(wed)
	assert.False(t, ok)
}

func TestResetCalendar(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/v1/calendar", `{"start":"2024-06-01","days":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var days []model.CalendarDay
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 3)
	assert.Equal(t, "Sat, Jun 1", days[0].Date)
	assert.Equal(t, float64(model.WeekendBaseRate), days[0].BaseRate)

	rec = ts.do(http.MethodPost, "/v1/calendar", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	assert.Len(t, days, model.DefaultCalendarDays)
	assert.Equal(t, wed, days[0].Date)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/v1/calendar", `{"start":"June 1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/v1/calendar", `{"days":1000}`).Code)
}

func TestAmountDecoding(t *testing.T) {
	cases := []struct {
		in    string
		value float64
		clear bool
	}{
		{`{"value":"12.5"}`, 12.5, false},
		{`{"value":12.5}`, 12.5, false},
		{`{"value":""}`, 0, true},
		{`{"value":"  "}`, 0, true},
		{`{"value":null}`, 0, true},
		{`{"value":"abc"}`, 0, false},
		{`{}`, 0, true},
	}
	for _, tc := range cases {
		var body struct {
			Value amount `json:"value"`
		}
		require.NoError(t, json.Unmarshal([]byte(tc.in), &body), tc.in)
		v, clear := body.Value.parse()
		assert.Equal(t, tc.value, v, tc.in)
		assert.Equal(t, tc.clear, clear, tc.in)
	}

	var bad struct {
		Value amount `json:"value"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"value":true}`), &bad))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(fmt.Errorf("x: %w", model.ErrDateNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusOf(model.ErrInvalidInput))
	assert.Equal(t, http.StatusConflict, statusOf(model.ErrAnchorRoom))
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(&pricing.CyclicDerivationError{Chain: []string{"a", "a"}}))
	assert.Equal(t, http.StatusInternalServerError, statusOf(fmt.Errorf("%w: boom", service.ErrPersist)))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("other")))
}

package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

func demoStore(t *testing.T) (*model.Store, string) {
	t.Helper()
	s := model.DefaultStore()
	s.Hydrate(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), model.DefaultCalendarDays)
	return s, s.Days[0].Date
}

func TestAnchorValue(t *testing.T) {
	s, date := demoStore(t)
	assert.Equal(t, 100.0, AnchorValue(s, date))
	assert.Equal(t, 150.0, AnchorValue(s, s.Days[2].Date))
	assert.Zero(t, AnchorValue(s, "Sun, Jan 1"))
	assert.Zero(t, AnchorValue(nil, date))

	require.NoError(t, s.SetAnchorRate(date, 0))
	assert.Zero(t, AnchorValue(s, date), "an explicit anchor of 0 still wins")
}

func TestEffectivePolicy(t *testing.T) {
	s, date := demoStore(t)
	p1, _ := s.Rate("p1")

	cp, ok := EffectivePolicy(s, p1, date)
	require.True(t, ok)
	assert.Equal(t, "cp1", cp.ID)

	require.NoError(t, s.SetPolicyOverride("p1", date, "cp2"))
	cp, ok = EffectivePolicy(s, p1, date)
	require.True(t, ok)
	assert.Equal(t, "cp2", cp.ID)

	require.NoError(t, s.SetRatePolicy("p1", ""))
	_, ok = EffectivePolicy(s, p1, s.Days[1].Date)
	assert.False(t, ok)
}

func TestResolver_RoomPrice(t *testing.T) {
	s, date := demoStore(t)
	r := NewResolver(s)

	q, err := r.RoomPrice("p1", "r1", date)
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 100, Origin: OriginAnchor}, q)

	q, err = r.RoomPrice("p1", "r2", date)
	require.NoError(t, err)
	assert.Equal(t, 110.0, q.Price)
	assert.Equal(t, OriginSupplement, q.Origin)

	q, err = r.RoomPrice("p3", "r2", date)
	require.NoError(t, err)
	assert.InDelta(t, 94.05, q.Price, 1e-9)
	assert.Equal(t, OriginDerived, q.Origin)
	assert.False(t, q.Overridden)
}

func TestResolver_OverrideIsFlagged(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetOverride("p2", "r2", date, 80))
	r := NewResolver(s)

	q, err := r.RoomPrice("p2", "r2", date)
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 80, Overridden: true, Origin: OriginOverride}, q)

	q, err = r.RoomPrice("p3", "r2", date)
	require.NoError(t, err)
	assert.InDelta(t, 76.0, q.Price, 1e-9)
	assert.False(t, q.Overridden)
}

func TestResolver_UnknownIDs(t *testing.T) {
	s, date := demoStore(t)
	r := NewResolver(s)

	_, err := r.RoomPrice("nope", "r1", date)
	assert.ErrorIs(t, err, model.ErrRateNotFound)
	_, err = r.RoomPrice("p1", "nope", date)
	assert.ErrorIs(t, err, model.ErrRoomNotFound)
	_, err = r.OptionPrice("p1", "r1", "nope", date)
	assert.ErrorIs(t, err, model.ErrOptionNotFound)
	_, err = r.Restriction("nope", date)
	assert.ErrorIs(t, err, model.ErrRateNotFound)
}

func TestResolver_OptionPrice(t *testing.T) {
	s, date := demoStore(t)
	r := NewResolver(s)

	q, err := r.OptionPrice("p1", "r2", "o5", date)
	require.NoError(t, err)
	assert.Equal(t, 130.0, q.Price)

	require.NoError(t, s.SetOptionDelta("r2", "o5", model.Percent(10)))
	q, err = r.OptionPrice("p1", "r2", "o5", date)
	require.NoError(t, err)
	assert.InDelta(t, 121.0, q.Price, 1e-9)

	require.NoError(t, s.SetOptionOverride("p1", "r2", "o5", date, 99))
	q, err = r.OptionPrice("p1", "r2", "o5", date)
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 99, Overridden: true, Origin: OriginOverride}, q)
}

func TestResolver_OptionStacksOnOverriddenRoom(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetOverride("p1", "r2", date, 200))
	q, err := NewResolver(s).OptionPrice("p1", "r2", "o5", date)
	require.NoError(t, err)
	assert.Equal(t, 220.0, q.Price)
}

func TestResolver_ExactModel(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetPricingModel(model.PricingExact))
	require.NoError(t, s.SetBasePrice("p3", "r2", 140))
	require.NoError(t, s.SetOptionPrice("p3", "r2", "o5", 160))
	r := NewResolver(s)

	q, err := r.RoomPrice("p3", "r2", date)
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 140, Origin: OriginConfigured}, q)

	q, err = r.OptionPrice("p3", "r2", "o5", date)
	require.NoError(t, err)
	assert.Equal(t, 160.0, q.Price)

	q, err = r.RoomPrice("p1", "r1", date)
	require.NoError(t, err)
	assert.Zero(t, q.Price, "unconfigured exact prices read as 0")

	require.NoError(t, s.SetOverride("p3", "r2", date, 155))
	q, err = r.RoomPrice("p3", "r2", date)
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 155, Overridden: true, Origin: OriginOverride}, q)
}

func TestResolver_DerivationModelMatchesStandard(t *testing.T) {
	s, date := demoStore(t)
	want, err := NewResolver(s).RoomPrice("p3", "r4", date)
	require.NoError(t, err)

	require.NoError(t, s.SetPricingModel(model.PricingDerivation))
	got, err := NewResolver(s).RoomPrice("p3", "r4", date)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_Preview(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetOverride("p1", "r3", date, 1))
	r := NewResolver(s)

	got, err := r.Preview("p1", "r3", PreviewAnchor)
	require.NoError(t, err)
	assert.Equal(t, 130.0, got)

	got, err = r.Preview("p2", "r3", 200)
	require.NoError(t, err)
	assert.InDelta(t, 207.0, got, 1e-9)
}

func TestResolver_Restriction(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetRestriction("p1", date, model.Restriction{StopSell: true, MinLOS: 2}))
	r := NewResolver(s)

	got, err := r.Restriction("p1", date)
	require.NoError(t, err)
	assert.Equal(t, model.Restriction{StopSell: true, MinLOS: 2}, got)

	got, err = r.Restriction("p2", date)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRestriction(), got)
}

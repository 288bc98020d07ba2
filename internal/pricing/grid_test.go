package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

func TestBuildGrid_Layout(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetAnchorRate(s.Days[1].Date, 120))
	g := BuildGrid(s)

	require.Len(t, g.Dates, 7)
	assert.Equal(t, date, g.Dates[0])
	assert.Equal(t, AnchorCell{Date: date, Value: 100}, g.Anchor[0])
	assert.Equal(t, AnchorCell{Date: s.Days[1].Date, Value: 120, Explicit: true}, g.Anchor[1])

	require.Len(t, g.Rates, 3)
	bar := g.Rates[0]
	assert.Equal(t, "p1", bar.RateID)
	assert.Nil(t, bar.Rule)
	require.Len(t, bar.Clusters, 3)
	assert.Equal(t, "c1", bar.Clusters[0].ClusterID)
	require.Len(t, bar.Clusters[0].Rooms, 2)

	anchorRow := bar.Clusters[0].Rooms[0]
	assert.True(t, anchorRow.Anchor)
	assert.Nil(t, anchorRow.Supplement)
	assert.Equal(t, 100.0, anchorRow.Cells[0].Price)
	assert.Equal(t, 120.0, anchorRow.Cells[1].Price)

	viewRow := bar.Clusters[0].Rooms[1]
	require.NotNil(t, viewRow.Supplement)
	assert.Equal(t, model.Fixed(10), *viewRow.Supplement)
	require.Len(t, viewRow.Options, 2)
	assert.Equal(t, 130.0, viewRow.Options[1].Cells[0].Price)

	nref := g.Rates[1]
	require.NotNil(t, nref.Rule)
	assert.Equal(t, model.Percent(-10), *nref.Rule)
	assert.Equal(t, "p1", nref.ParentID)
	assert.Equal(t, "cp2", nref.Policies[0])
	assert.Equal(t, model.DefaultRestriction(), nref.Restrictions[0])
}

func TestBuildGrid_UnknownClusterFallsBackToFirst(t *testing.T) {
	s, _ := demoStore(t)
	s.Rooms[6].ClusterID = "gone"
	g := BuildGrid(s)

	first := g.Rates[0].Clusters[0]
	require.Len(t, first.Rooms, 3)
	assert.Equal(t, "r7", first.Rooms[2].RoomID)
}

func TestBuildGrid_NoClusters(t *testing.T) {
	s, _ := demoStore(t)
	s.Clusters = nil
	g := BuildGrid(s)

	require.Len(t, g.Rates[0].Clusters, 1)
	assert.Equal(t, "Default", g.Rates[0].Clusters[0].Name)
	assert.Len(t, g.Rates[0].Clusters[0].Rooms, 7)
}

func TestBuildGrid_CycleMarksCellsOnly(t *testing.T) {
	s, _ := demoStore(t)
	p2, _ := s.Rate("p2")
	p3, _ := s.Rate("p3")
	p2.ParentID = "p3"
	p3.ParentID = "p2"

	g := BuildGrid(s)
	bar := g.Rates[0].Clusters[0].Rooms[0]
	assert.Empty(t, bar.Cells[0].Error)
	assert.Equal(t, 100.0, bar.Cells[0].Price)

	cell := g.Rates[1].Clusters[0].Rooms[0].Cells[0]
	assert.Contains(t, cell.Error, "cyclic rate derivation")
	assert.Zero(t, cell.Price)
	assert.NotEmpty(t, g.Rates[2].Clusters[0].Rooms[0].Options[0].Cells[0].Error)
}

func TestBuildGrid_PinnedOptionSurvivesCycle(t *testing.T) {
	s, date := demoStore(t)
	require.NoError(t, s.SetOptionOverride("p2", "r1", "o1", date, 99))
	p2, _ := s.Rate("p2")
	p3, _ := s.Rate("p3")
	p2.ParentID = "p3"
	p3.ParentID = "p2"

	opts := BuildGrid(s).Rates[1].Clusters[0].Rooms[0].Options
	assert.Empty(t, opts[0].Cells[0].Error)
	assert.Equal(t, 99.0, opts[0].Cells[0].Price)
	assert.True(t, opts[0].Cells[0].Overridden)
	assert.Contains(t, opts[1].Cells[0].Error, "cyclic rate derivation")

	q, err := NewResolver(s).OptionPrice("p2", "r1", "o1", date)
	require.NoError(t, err)
	assert.Equal(t, 99.0, q.Price)
	assert.Equal(t, OriginOverride, q.Origin)

	_, err = NewResolver(s).OptionPrice("p2", "r1", "o2", date)
	assert.ErrorIs(t, err, ErrCyclicDerivation)
}

func TestBuildGrid_ExactHidesSupplements(t *testing.T) {
	s, _ := demoStore(t)
	require.NoError(t, s.SetPricingModel(model.PricingExact))
	g := BuildGrid(s)
	assert.Equal(t, model.PricingExact, g.PricingModel)
	assert.Nil(t, g.Rates[0].Clusters[0].Rooms[1].Supplement)
}

package merge_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/merge"
	"github.com/travigo/transmodel/pkg/model"
)

func date(value string) time.Time {
	parsed, err := time.Parse(ctm.DateFormat, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

// buildRegion assembles one self-contained validated model, the shape a
// single data source produces.
func buildRegion(t *testing.T, stopAreaName string) *model.Model {
	t.Helper()

	c := model.NewCollections()

	inserts := []error{}
	push := func(err error) { inserts = append(inserts, err) }

	_, err := c.Networks.Insert(&ctm.Network{PrimaryIdentifier: "n1", Name: stopAreaName + " network"})
	push(err)
	_, err = c.Lines.Insert(&ctm.Line{PrimaryIdentifier: "l1", NetworkRef: "n1", GeometryRef: "g1"})
	push(err)
	_, err = c.Routes.Insert(&ctm.Route{PrimaryIdentifier: "r1", LineRef: "l1"})
	push(err)
	_, err = c.StopAreas.Insert(&ctm.StopArea{PrimaryIdentifier: "A1", Name: stopAreaName})
	push(err)
	_, err = c.StopPoints.Insert(&ctm.StopPoint{PrimaryIdentifier: "sp1", StopAreaRef: "A1"})
	push(err)
	_, err = c.Calendars.Insert(&ctm.Calendar{
		PrimaryIdentifier: "c1",
		Monday:            true,
		StartDate:         date("2026-01-01"),
		EndDate:           date("2026-12-31"),
	})
	push(err)
	_, err = c.Geometries.Insert(&ctm.Geometry{PrimaryIdentifier: "g1", Points: []ctm.Location{
		{Type: "Point", Coordinates: []float64{1.0, 2.0}},
	}})
	push(err)
	_, err = c.Trips.Insert(&ctm.Trip{
		PrimaryIdentifier: "t1",
		RouteRef:          "r1",
		CalendarRef:       "c1",
		StopTimes: []ctm.StopTime{
			{Sequence: 0, StopPointRef: "sp1"},
		},
	})
	push(err)

	for _, err := range inserts {
		require.NoError(t, err)
	}

	validated, err := model.New(c)
	require.NoError(t, err)

	return validated
}

// Two sources both naming a stop area "A1" must come out as two distinct,
// prefixed stop areas with no violations.
func TestMergeResolvesIdentifierCollisions(t *testing.T) {
	src1 := buildRegion(t, "Gare de Lyon")
	src2 := buildRegion(t, "Lyon Part-Dieu")

	merged, err := merge.Merge([]merge.Source{
		{Model: src1, Tag: "src1"},
		{Model: src2, Tag: "src2"},
	})
	require.NoError(t, err)

	stopAreas := merged.Collections().StopAreas

	first, found := stopAreas.GetByID("src1:A1")
	require.True(t, found)
	second, found := stopAreas.GetByID("src2:A1")
	require.True(t, found)

	assert.Equal(t, "Gare de Lyon", first.Name)
	assert.Equal(t, "Lyon Part-Dieu", second.Name)

	// Internal references were rewritten alongside the identifiers
	trip, found := merged.Collections().Trips.GetByID("src2:t1")
	require.True(t, found)
	assert.Equal(t, "src2:r1", trip.RouteRef)
	assert.Equal(t, "src2:sp1", trip.StopTimes[0].StopPointRef)
}

func TestMergeRequiresSourceTags(t *testing.T) {
	src := buildRegion(t, "Somewhere")

	_, err := merge.Merge([]merge.Source{
		{Model: src, Tag: "tagged"},
		{Model: src},
	})
	require.Error(t, err)

	missingTag, isMissingTag := err.(*merge.MissingSourceTagError)
	require.True(t, isMissingTag)
	assert.Equal(t, 1, missingTag.Position)

	// A failed merge leaves its inputs untouched
	assert.True(t, src.Collections().StopAreas.Contains("A1"))

	_, err = merge.Merge(nil)
	assert.ErrorIs(t, err, merge.ErrNoSources)
}

// Merging a model with a structural copy of itself under the same tag leaves
// exactly one record per identifier.
func TestMergeIdempotence(t *testing.T) {
	first := buildRegion(t, "Gare de Lyon")
	second := buildRegion(t, "Gare de Lyon")

	merged, err := merge.Merge([]merge.Source{
		{Model: first, Tag: "src"},
		{Model: second, Tag: "src"},
	})
	require.NoError(t, err)

	c := merged.Collections()
	assert.Equal(t, 1, c.Geometries.Len())
	assert.Equal(t, 1, c.Calendars.Len())
	assert.Equal(t, 1, c.Trips.Len())
	assert.Equal(t, 1, c.StopAreas.Len())
}

// Geometries and calendars that are structurally identical across sources
// collapse to a single surviving copy with every reference rewritten; stop
// areas and other identity-bearing records never collapse.
func TestMergeDeduplicatesValueRecords(t *testing.T) {
	src1 := buildRegion(t, "Region One")
	src2 := buildRegion(t, "Region Two")

	merged, err := merge.Merge([]merge.Source{
		{Model: src1, Tag: "src1"},
		{Model: src2, Tag: "src2"},
	})
	require.NoError(t, err)

	c := merged.Collections()

	// Identical content, so one geometry and one calendar survive
	assert.Equal(t, 1, c.Geometries.Len())
	assert.Equal(t, 1, c.Calendars.Len())

	line, found := c.Lines.GetByID("src2:l1")
	require.True(t, found)
	assert.Equal(t, "src1:g1", line.GeometryRef)

	trip, found := c.Trips.GetByID("src2:t1")
	require.True(t, found)
	assert.Equal(t, "src1:c1", trip.CalendarRef)

	// Stop areas keep both copies even though their attributes could match
	assert.Equal(t, 2, c.StopAreas.Len())
}

// Pairwise merging and merging everything at once must produce the same
// identifier sets and resolved references.
func TestMergeAssociativity(t *testing.T) {
	buildAll := func() (*model.Model, *model.Model, *model.Model) {
		return buildRegion(t, "One"), buildRegion(t, "Two"), buildRegion(t, "Three")
	}

	a, b, c := buildAll()
	allAtOnce, err := merge.Merge([]merge.Source{
		{Model: a, Tag: "a"},
		{Model: b, Tag: "b"},
		{Model: c, Tag: "c"},
	})
	require.NoError(t, err)

	a, b, c = buildAll()
	firstPair, err := merge.Merge([]merge.Source{
		{Model: a, Tag: "a"},
		{Model: b, Tag: "b"},
	})
	require.NoError(t, err)

	pairwise, err := merge.Merge([]merge.Source{
		{Model: firstPair, Namespaced: true},
		{Model: c, Tag: "c"},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, allAtOnce.Collections().StopAreas.IDs(), pairwise.Collections().StopAreas.IDs())
	assert.ElementsMatch(t, allAtOnce.Collections().Trips.IDs(), pairwise.Collections().Trips.IDs())
	assert.ElementsMatch(t, allAtOnce.Collections().Networks.IDs(), pairwise.Collections().Networks.IDs())
	assert.ElementsMatch(t, allAtOnce.Collections().Geometries.IDs(), pairwise.Collections().Geometries.IDs())
	assert.ElementsMatch(t, allAtOnce.Collections().Calendars.IDs(), pairwise.Collections().Calendars.IDs())

	tripAllAtOnce, _ := allAtOnce.Collections().Trips.GetByID("c:t1")
	tripPairwise, _ := pairwise.Collections().Trips.GetByID("c:t1")
	require.NotNil(t, tripAllAtOnce)
	require.NotNil(t, tripPairwise)
	assert.Equal(t, tripAllAtOnce.CalendarRef, tripPairwise.CalendarRef)
}

// Transfers and frequencies have no identifiers of their own, but their
// references still carry the source tag after a merge.
func TestMergePrefixesPositionalRecords(t *testing.T) {
	build := func() *model.Model {
		c := model.NewCollections()

		_, err := c.Networks.Insert(&ctm.Network{PrimaryIdentifier: "n1"})
		require.NoError(t, err)
		_, err = c.Lines.Insert(&ctm.Line{PrimaryIdentifier: "l1", NetworkRef: "n1"})
		require.NoError(t, err)
		_, err = c.Routes.Insert(&ctm.Route{PrimaryIdentifier: "r1", LineRef: "l1"})
		require.NoError(t, err)
		_, err = c.StopAreas.Insert(&ctm.StopArea{PrimaryIdentifier: "sa1"})
		require.NoError(t, err)
		_, err = c.StopPoints.Insert(&ctm.StopPoint{PrimaryIdentifier: "sp1", StopAreaRef: "sa1"})
		require.NoError(t, err)
		_, err = c.StopPoints.Insert(&ctm.StopPoint{PrimaryIdentifier: "sp2", StopAreaRef: "sa1"})
		require.NoError(t, err)
		_, err = c.Calendars.Insert(&ctm.Calendar{
			PrimaryIdentifier: "c1",
			Monday:            true,
			StartDate:         date("2026-01-01"),
			EndDate:           date("2026-12-31"),
		})
		require.NoError(t, err)
		_, err = c.Trips.Insert(&ctm.Trip{
			PrimaryIdentifier: "t1",
			RouteRef:          "r1",
			CalendarRef:       "c1",
			StopTimes: []ctm.StopTime{
				{Sequence: 0, StopPointRef: "sp1"},
				{Sequence: 1, StopPointRef: "sp2"},
			},
		})
		require.NoError(t, err)

		c.Transfers = append(c.Transfers, ctm.Transfer{
			FromStopPointRef: "sp1",
			ToStopPointRef:   "sp2",
			MinTransferTime:  60,
		})
		c.Frequencies = append(c.Frequencies, ctm.Frequency{
			TripRef:        "t1",
			StartTime:      ctm.NewTime(6, 0, 0),
			EndTime:        ctm.NewTime(9, 0, 0),
			HeadwaySeconds: 300,
		})

		m, err := model.New(c)
		require.NoError(t, err)

		return m
	}

	merged, err := merge.Merge([]merge.Source{
		{Model: build(), Tag: "src1"},
		{Model: build(), Tag: "src2"},
	})
	require.NoError(t, err)

	transfers := merged.Collections().Transfers
	require.Len(t, transfers, 2)
	assert.Equal(t, "src1:sp1", transfers[0].FromStopPointRef)
	assert.Equal(t, "src1:sp2", transfers[0].ToStopPointRef)
	assert.Equal(t, "src2:sp1", transfers[1].FromStopPointRef)

	frequencies := merged.Collections().Frequencies
	require.Len(t, frequencies, 2)
	assert.Equal(t, "src1:t1", frequencies[0].TripRef)
	assert.Equal(t, "src2:t1", frequencies[1].TripRef)
}

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "merge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
OutputPath: merged.json
Sources:
  - Path: one.json
    Tag: src1
  - Path: two.json
    Tag: src2
`), 0o644))

	definition, err := merge.LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "merged.json", definition.OutputPath)
	require.Len(t, definition.Sources, 2)
	assert.Equal(t, "src1", definition.Sources[0].Tag)
}

func TestLoadDefinitionRejectsMissingTag(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "merge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
OutputPath: merged.json
Sources:
  - Path: one.json
`), 0o644))

	_, err := merge.LoadDefinition(path)
	assert.Error(t, err)
}

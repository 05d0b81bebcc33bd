package snapshot_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travigo/transmodel/pkg/collection"
	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/model"
	"github.com/travigo/transmodel/pkg/snapshot"
)

func date(value string) time.Time {
	parsed, err := time.Parse(ctm.DateFormat, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func buildModel(t *testing.T) *model.Model {
	t.Helper()

	c := model.NewCollections()

	_, err := c.Networks.Insert(&ctm.Network{PrimaryIdentifier: "n1", Name: "Network One"})
	require.NoError(t, err)
	_, err = c.Lines.Insert(&ctm.Line{PrimaryIdentifier: "l1", NetworkRef: "n1", Name: "Line One"})
	require.NoError(t, err)
	_, err = c.Routes.Insert(&ctm.Route{PrimaryIdentifier: "r1", LineRef: "l1"})
	require.NoError(t, err)
	_, err = c.StopAreas.Insert(&ctm.StopArea{PrimaryIdentifier: "sa1", Name: "Central"})
	require.NoError(t, err)
	_, err = c.StopPoints.Insert(&ctm.StopPoint{PrimaryIdentifier: "sp1", StopAreaRef: "sa1"})
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
			{Sequence: 0, StopPointRef: "sp1", ArrivalTime: ctm.NewTime(8, 0, 0), DepartureTime: ctm.NewTime(8, 1, 0)},
		},
	})
	require.NoError(t, err)

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

func TestWriteReadRoundTrip(t *testing.T) {
	original := buildModel(t)

	var buffer bytes.Buffer
	require.NoError(t, snapshot.Write(&buffer, original))

	loaded, err := snapshot.Read(&buffer)
	require.NoError(t, err)

	restored, err := model.New(loaded)
	require.NoError(t, err)

	assert.Equal(t, original.Collections().Networks.IDs(), restored.Collections().Networks.IDs())
	assert.Equal(t, original.Collections().Trips.IDs(), restored.Collections().Trips.IDs())

	trip, found := restored.Collections().Trips.GetByID("t1")
	require.True(t, found)
	assert.Equal(t, "sp1", trip.StopTimes[0].StopPointRef)
	assert.Equal(t, ctm.NewTime(8, 0, 0), trip.StopTimes[0].ArrivalTime)

	require.Len(t, restored.Collections().Frequencies, 1)
	assert.Equal(t, "t1", restored.Collections().Frequencies[0].TripRef)

	calendar, found := restored.Collections().Calendars.GetByID("c1")
	require.True(t, found)
	assert.True(t, calendar.Monday)
	assert.Equal(t, date("2026-01-01"), calendar.StartDate)
}

func TestWriteIsDeterministic(t *testing.T) {
	m := buildModel(t)

	var first, second bytes.Buffer
	require.NoError(t, snapshot.Write(&first, m))
	require.NoError(t, snapshot.Write(&second, m))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

// Records may appear in any order; referential integrity is only checked when
// the builder is validated into a model.
func TestReadAcceptsAnyRecordOrder(t *testing.T) {
	loaded, err := snapshot.Read(strings.NewReader(`{
		"lines": [{"PrimaryIdentifier": "l1", "NetworkRef": "n1"}],
		"networks": [{"PrimaryIdentifier": "n1"}]
	}`))
	require.NoError(t, err)

	assert.True(t, loaded.Lines.Contains("l1"))
	assert.Empty(t, loaded.Validate())
}

func TestReadRejectsDuplicateIdentifiers(t *testing.T) {
	_, err := snapshot.Read(strings.NewReader(`{
		"networks": [
			{"PrimaryIdentifier": "n1"},
			{"PrimaryIdentifier": "n1"}
		]
	}`))
	require.Error(t, err)

	var duplicate *collection.DuplicateIdentifierError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "n1", duplicate.Identifier)
}

func TestReadRejectsMalformedInput(t *testing.T) {
	_, err := snapshot.Read(strings.NewReader(`{"networks": [`))
	assert.Error(t, err)
}

func TestReadRejectsNullRecords(t *testing.T) {
	_, err := snapshot.Read(strings.NewReader(`{
		"networks": [{"PrimaryIdentifier": "n1"}, null]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}

package model

import (
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/relations"
	"github.com/travigo/transmodel/pkg/util"
)

// Model is a validated, read-only transit model. Construction freezes the
// underlying collections, so no synchronization is needed for concurrent
// readers. Mutation happens by seeding a fresh builder with IntoCollections.
type Model struct {
	collections *Collections
	relations   map[string]*relations.Relation
}

const (
	RelationLinesNetworks        = "lines_networks"
	RelationLinesCommercialModes = "lines_commercial_modes"
	RelationRoutesLines          = "routes_lines"
	RelationTripsRoutes          = "trips_routes"
	RelationTripsCalendars       = "trips_calendars"
	RelationTripsCompanies       = "trips_companies"
	RelationTripsPhysicalModes   = "trips_physical_modes"
	RelationTripsStopPoints      = "trips_stop_points"
	RelationStopPointsStopAreas  = "stop_points_stop_areas"
	RelationDatasetsContributors = "datasets_contributors"
	RelationLinesComments        = "lines_comments"
)

// New validates the collections and, on success, returns the frozen model
// with every relation index built. On failure it returns a ValidationError
// carrying every violation and the collections are left untouched and
// mutable.
func New(collections *Collections) (*Model, error) {
	if violations := collections.Validate(); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	model := &Model{
		collections: collections,
		relations:   map[string]*relations.Relation{},
	}
	model.declareRelations()

	// Every relation only reads its own source collection, so the rebuilds
	// can run concurrently.
	p := pool.New()
	for _, relation := range model.relations {
		p.Go(relation.Rebuild)
	}
	p.Wait()

	collections.freeze()

	log.Debug().
		Int("trips", collections.Trips.Len()).
		Int("stopPoints", collections.StopPoints.Len()).
		Int("relations", len(model.relations)).
		Msg("Validated model")

	return model, nil
}

func (m *Model) declareRelations() {
	c := m.collections

	m.declare(RelationLinesNetworks, ctm.KindLine, ctm.KindNetwork, c.Lines.IDs, func(id string) []string {
		line, _ := c.Lines.GetByID(id)
		return single(line.NetworkRef)
	})
	m.declare(RelationLinesCommercialModes, ctm.KindLine, ctm.KindCommercialMode, c.Lines.IDs, func(id string) []string {
		line, _ := c.Lines.GetByID(id)
		return single(line.CommercialModeRef)
	})
	m.declare(RelationRoutesLines, ctm.KindRoute, ctm.KindLine, c.Routes.IDs, func(id string) []string {
		route, _ := c.Routes.GetByID(id)
		return single(route.LineRef)
	})
	m.declare(RelationTripsRoutes, ctm.KindTrip, ctm.KindRoute, c.Trips.IDs, func(id string) []string {
		trip, _ := c.Trips.GetByID(id)
		return single(trip.RouteRef)
	})
	m.declare(RelationTripsCalendars, ctm.KindTrip, ctm.KindCalendar, c.Trips.IDs, func(id string) []string {
		trip, _ := c.Trips.GetByID(id)
		return single(trip.CalendarRef)
	})
	m.declare(RelationTripsCompanies, ctm.KindTrip, ctm.KindCompany, c.Trips.IDs, func(id string) []string {
		trip, _ := c.Trips.GetByID(id)
		return single(trip.CompanyRef)
	})
	m.declare(RelationTripsPhysicalModes, ctm.KindTrip, ctm.KindPhysicalMode, c.Trips.IDs, func(id string) []string {
		trip, _ := c.Trips.GetByID(id)
		return single(trip.PhysicalModeRef)
	})
	m.declare(RelationTripsStopPoints, ctm.KindTrip, ctm.KindStopPoint, c.Trips.IDs, func(id string) []string {
		trip, _ := c.Trips.GetByID(id)

		stopPoints := make([]string, 0, len(trip.StopTimes))
		for _, stopTime := range trip.StopTimes {
			stopPoints = append(stopPoints, stopTime.StopPointRef)
		}

		return util.RemoveDuplicateStrings(stopPoints, nil)
	})
	m.declare(RelationStopPointsStopAreas, ctm.KindStopPoint, ctm.KindStopArea, c.StopPoints.IDs, func(id string) []string {
		stopPoint, _ := c.StopPoints.GetByID(id)
		return single(stopPoint.StopAreaRef)
	})
	m.declare(RelationDatasetsContributors, ctm.KindDataset, ctm.KindContributor, c.Datasets.IDs, func(id string) []string {
		dataset, _ := c.Datasets.GetByID(id)
		return single(dataset.ContributorRef)
	})
	m.declare(RelationLinesComments, ctm.KindLine, ctm.KindComment, c.Lines.IDs, func(id string) []string {
		line, _ := c.Lines.GetByID(id)
		return line.CommentRefs
	})
}

func (m *Model) declare(name string, source ctm.Kind, target ctm.Kind, sourceIDs func() []string, extract func(string) []string) {
	m.relations[name] = relations.NewRelation(relations.Definition{
		Name:   name,
		Source: source,
		Target: target,
	}, sourceIDs, extract)
}

func single(ref string) []string {
	if ref == "" {
		return nil
	}

	return []string{ref}
}

// Collections exposes the frozen collections for readers. Writers must
// iterate them to get deterministic insertion-order output.
func (m *Model) Collections() *Collections {
	return m.collections
}

func (m *Model) Relation(name string) *relations.Relation {
	return m.relations[name]
}

// IntoCollections returns a fresh mutable builder deep copied from this
// model. The model itself is never mutated in place.
func (m *Model) IntoCollections() (*Collections, error) {
	return m.collections.Clone()
}

// Navigation helpers chaining the relation indexes.

func (m *Model) LinesOfNetwork(networkID string) []string {
	return m.relations[RelationLinesNetworks].Referencing(networkID)
}

func (m *Model) RoutesOfLine(lineID string) []string {
	return m.relations[RelationRoutesLines].Referencing(lineID)
}

func (m *Model) TripsOfRoute(routeID string) []string {
	return m.relations[RelationTripsRoutes].Referencing(routeID)
}

func (m *Model) TripsOfCalendar(calendarID string) []string {
	return m.relations[RelationTripsCalendars].Referencing(calendarID)
}

func (m *Model) StopPointsInArea(stopAreaID string) []string {
	return m.relations[RelationStopPointsStopAreas].Referencing(stopAreaID)
}

func (m *Model) TripsServingStopPoint(stopPointID string) []string {
	return m.relations[RelationTripsStopPoints].Referencing(stopPointID)
}

// LinesServingStopPoint walks stop point -> trips -> routes -> lines.
func (m *Model) LinesServingStopPoint(stopPointID string) []string {
	var lines []string

	for _, tripID := range m.TripsServingStopPoint(stopPointID) {
		for _, routeID := range m.relations[RelationTripsRoutes].RelatedTo(tripID) {
			lines = append(lines, m.relations[RelationRoutesLines].RelatedTo(routeID)...)
		}
	}

	return util.RemoveDuplicateStrings(lines, nil)
}

// LinesServingStopArea aggregates LinesServingStopPoint over every stop point
// of the area.
func (m *Model) LinesServingStopArea(stopAreaID string) []string {
	var lines []string

	for _, stopPointID := range m.StopPointsInArea(stopAreaID) {
		lines = append(lines, m.LinesServingStopPoint(stopPointID)...)
	}

	return util.RemoveDuplicateStrings(lines, nil)
}

package merge

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/travigo/transmodel/pkg/collection"
	"github.com/travigo/transmodel/pkg/model"
)

// Source is one validated input to a merge: a model plus the tag used to
// namespace its identifiers. A source whose identifiers already carry their
// tags, typically the output of an earlier merge, sets Namespaced and is
// taken as-is; merges therefore compose without double prefixing.
type Source struct {
	Model      *model.Model
	Tag        string
	Namespaced bool
}

var ErrNoSources = errors.New("merge needs at least one source")

// MissingSourceTagError means the caller forgot to tag a source. Without a
// tag, identifier collisions across sources cannot be resolved, so this is a
// programming error rather than a data problem.
type MissingSourceTagError struct {
	Position int
}

func (e *MissingSourceTagError) Error() string {
	return fmt.Sprintf("merge source at position %d has no source tag", e.Position)
}

// Merge combines the sources into a single validated model.
//
// Every identifier of every source is prefixed with its source tag
// ("tag:id"), and every foreign key is rewritten to match, so sources can
// never collide with each other. Value-like records (geometries, calendars)
// are then deduplicated by content across sources. If two sources still
// produce the same identifier (only possible with a shared tag), the first
// source in argument order wins; an identical duplicate is skipped silently,
// a differing one is logged and skipped.
//
// The merge is atomic: either the combined collections validate into a model
// or an error is returned and the inputs are untouched.
func Merge(sources []Source) (*model.Model, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	for i, source := range sources {
		if source.Tag == "" && !source.Namespaced {
			return nil, &MissingSourceTagError{Position: i}
		}
	}

	// Namespace reconciliation of each source is independent of the others.
	prefixed := make([]*model.Collections, len(sources))

	p := pool.New().WithErrors()
	for i, source := range sources {
		p.Go(func() error {
			cloned, err := source.Model.IntoCollections()
			if err != nil {
				return err
			}

			if source.Namespaced {
				prefixed[i] = cloned
				return nil
			}

			reconciled, err := applyPrefix(cloned, source.Tag)
			if err != nil {
				return err
			}

			prefixed[i] = reconciled
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	merged := model.NewCollections()
	for _, source := range prefixed {
		if err := union(merged, source); err != nil {
			return nil, err
		}
	}

	if err := deduplicate(merged); err != nil {
		return nil, err
	}

	log.Info().
		Int("sources", len(sources)).
		Int("networks", merged.Networks.Len()).
		Int("trips", merged.Trips.Len()).
		Msg("Merged sources")

	return model.New(merged)
}

func prefixID(tag string, id string) string {
	if id == "" {
		return ""
	}

	return tag + ":" + id
}

func prefixIDs(tag string, ids []string) []string {
	prefixed := make([]string, 0, len(ids))
	for _, id := range ids {
		prefixed = append(prefixed, prefixID(tag, id))
	}

	return prefixed
}

// applyPrefix rewrites every identifier and every foreign key of the cloned
// collections to carry the source tag. Internal references stay correct
// because both sides of every edge are rewritten with the same tag.
func applyPrefix(c *model.Collections, tag string) (*model.Collections, error) {
	reconciled := model.NewCollections()

	for _, network := range c.Networks.Iter() {
		network.PrimaryIdentifier = prefixID(tag, network.PrimaryIdentifier)
		if _, err := reconciled.Networks.Insert(network); err != nil {
			return nil, err
		}
	}
	for _, mode := range c.CommercialModes.Iter() {
		mode.PrimaryIdentifier = prefixID(tag, mode.PrimaryIdentifier)
		if _, err := reconciled.CommercialModes.Insert(mode); err != nil {
			return nil, err
		}
	}
	for _, mode := range c.PhysicalModes.Iter() {
		mode.PrimaryIdentifier = prefixID(tag, mode.PrimaryIdentifier)
		if _, err := reconciled.PhysicalModes.Insert(mode); err != nil {
			return nil, err
		}
	}
	for _, company := range c.Companies.Iter() {
		company.PrimaryIdentifier = prefixID(tag, company.PrimaryIdentifier)
		if _, err := reconciled.Companies.Insert(company); err != nil {
			return nil, err
		}
	}
	for _, contributor := range c.Contributors.Iter() {
		contributor.PrimaryIdentifier = prefixID(tag, contributor.PrimaryIdentifier)
		if _, err := reconciled.Contributors.Insert(contributor); err != nil {
			return nil, err
		}
	}
	for _, dataset := range c.Datasets.Iter() {
		dataset.PrimaryIdentifier = prefixID(tag, dataset.PrimaryIdentifier)
		dataset.ContributorRef = prefixID(tag, dataset.ContributorRef)
		if _, err := reconciled.Datasets.Insert(dataset); err != nil {
			return nil, err
		}
	}
	for _, line := range c.Lines.Iter() {
		line.PrimaryIdentifier = prefixID(tag, line.PrimaryIdentifier)
		line.NetworkRef = prefixID(tag, line.NetworkRef)
		line.CommercialModeRef = prefixID(tag, line.CommercialModeRef)
		line.GeometryRef = prefixID(tag, line.GeometryRef)
		line.CommentRefs = prefixIDs(tag, line.CommentRefs)
		if _, err := reconciled.Lines.Insert(line); err != nil {
			return nil, err
		}
	}
	for _, route := range c.Routes.Iter() {
		route.PrimaryIdentifier = prefixID(tag, route.PrimaryIdentifier)
		route.LineRef = prefixID(tag, route.LineRef)
		route.GeometryRef = prefixID(tag, route.GeometryRef)
		route.CommentRefs = prefixIDs(tag, route.CommentRefs)
		if _, err := reconciled.Routes.Insert(route); err != nil {
			return nil, err
		}
	}
	for _, trip := range c.Trips.Iter() {
		trip.PrimaryIdentifier = prefixID(tag, trip.PrimaryIdentifier)
		trip.RouteRef = prefixID(tag, trip.RouteRef)
		trip.CalendarRef = prefixID(tag, trip.CalendarRef)
		trip.CompanyRef = prefixID(tag, trip.CompanyRef)
		trip.PhysicalModeRef = prefixID(tag, trip.PhysicalModeRef)
		trip.DatasetRef = prefixID(tag, trip.DatasetRef)
		trip.GeometryRef = prefixID(tag, trip.GeometryRef)
		trip.CommentRefs = prefixIDs(tag, trip.CommentRefs)
		for i := range trip.StopTimes {
			trip.StopTimes[i].StopPointRef = prefixID(tag, trip.StopTimes[i].StopPointRef)
		}
		if _, err := reconciled.Trips.Insert(trip); err != nil {
			return nil, err
		}
	}
	for _, stopArea := range c.StopAreas.Iter() {
		stopArea.PrimaryIdentifier = prefixID(tag, stopArea.PrimaryIdentifier)
		stopArea.CommentRefs = prefixIDs(tag, stopArea.CommentRefs)
		if _, err := reconciled.StopAreas.Insert(stopArea); err != nil {
			return nil, err
		}
	}
	for _, stopPoint := range c.StopPoints.Iter() {
		stopPoint.PrimaryIdentifier = prefixID(tag, stopPoint.PrimaryIdentifier)
		stopPoint.StopAreaRef = prefixID(tag, stopPoint.StopAreaRef)
		stopPoint.FareZoneRef = prefixID(tag, stopPoint.FareZoneRef)
		stopPoint.CommentRefs = prefixIDs(tag, stopPoint.CommentRefs)
		if _, err := reconciled.StopPoints.Insert(stopPoint); err != nil {
			return nil, err
		}
	}
	for _, calendar := range c.Calendars.Iter() {
		calendar.PrimaryIdentifier = prefixID(tag, calendar.PrimaryIdentifier)
		if _, err := reconciled.Calendars.Insert(calendar); err != nil {
			return nil, err
		}
	}
	for _, comment := range c.Comments.Iter() {
		comment.PrimaryIdentifier = prefixID(tag, comment.PrimaryIdentifier)
		if _, err := reconciled.Comments.Insert(comment); err != nil {
			return nil, err
		}
	}
	for _, geometry := range c.Geometries.Iter() {
		geometry.PrimaryIdentifier = prefixID(tag, geometry.PrimaryIdentifier)
		if _, err := reconciled.Geometries.Insert(geometry); err != nil {
			return nil, err
		}
	}
	for _, fareZone := range c.FareZones.Iter() {
		fareZone.PrimaryIdentifier = prefixID(tag, fareZone.PrimaryIdentifier)
		if _, err := reconciled.FareZones.Insert(fareZone); err != nil {
			return nil, err
		}
	}
	for _, fareRule := range c.FareRules.Iter() {
		fareRule.PrimaryIdentifier = prefixID(tag, fareRule.PrimaryIdentifier)
		fareRule.OriginZoneRef = prefixID(tag, fareRule.OriginZoneRef)
		fareRule.DestinationZoneRef = prefixID(tag, fareRule.DestinationZoneRef)
		fareRule.LineRef = prefixID(tag, fareRule.LineRef)
		if _, err := reconciled.FareRules.Insert(fareRule); err != nil {
			return nil, err
		}
	}

	reconciled.Transfers = c.Transfers
	for i := range reconciled.Transfers {
		reconciled.Transfers[i].FromStopPointRef = prefixID(tag, reconciled.Transfers[i].FromStopPointRef)
		reconciled.Transfers[i].ToStopPointRef = prefixID(tag, reconciled.Transfers[i].ToStopPointRef)
	}

	reconciled.Frequencies = c.Frequencies
	for i := range reconciled.Frequencies {
		reconciled.Frequencies[i].TripRef = prefixID(tag, reconciled.Frequencies[i].TripRef)
	}

	return reconciled, nil
}

// union appends one reconciled source into the destination. Duplicate
// identifiers can only come from sources sharing a tag; the earliest source
// wins.
func union(destination *model.Collections, source *model.Collections) error {
	if err := unionCollection(destination.Networks, source.Networks); err != nil {
		return err
	}
	if err := unionCollection(destination.CommercialModes, source.CommercialModes); err != nil {
		return err
	}
	if err := unionCollection(destination.PhysicalModes, source.PhysicalModes); err != nil {
		return err
	}
	if err := unionCollection(destination.Companies, source.Companies); err != nil {
		return err
	}
	if err := unionCollection(destination.Contributors, source.Contributors); err != nil {
		return err
	}
	if err := unionCollection(destination.Datasets, source.Datasets); err != nil {
		return err
	}
	if err := unionCollection(destination.Lines, source.Lines); err != nil {
		return err
	}
	if err := unionCollection(destination.Routes, source.Routes); err != nil {
		return err
	}
	if err := unionCollection(destination.Trips, source.Trips); err != nil {
		return err
	}
	if err := unionCollection(destination.StopAreas, source.StopAreas); err != nil {
		return err
	}
	if err := unionCollection(destination.StopPoints, source.StopPoints); err != nil {
		return err
	}
	if err := unionCollection(destination.Calendars, source.Calendars); err != nil {
		return err
	}
	if err := unionCollection(destination.Comments, source.Comments); err != nil {
		return err
	}
	if err := unionCollection(destination.Geometries, source.Geometries); err != nil {
		return err
	}
	if err := unionCollection(destination.FareZones, source.FareZones); err != nil {
		return err
	}
	if err := unionCollection(destination.FareRules, source.FareRules); err != nil {
		return err
	}

	destination.Transfers = append(destination.Transfers, source.Transfers...)
	destination.Frequencies = append(destination.Frequencies, source.Frequencies...)

	return nil
}

func unionCollection[T collection.Identifiable](destination *collection.Collection[T], source *collection.Collection[T]) error {
	for _, record := range source.Iter() {
		_, err := destination.Insert(record)
		if err == nil {
			continue
		}

		var duplicate *collection.DuplicateIdentifierError
		if !errors.As(err, &duplicate) {
			return err
		}

		existing, _ := destination.GetByID(record.Identifier())
		if !reflect.DeepEqual(existing, record) {
			// Documented tie-break: the earliest source in argument order
			// wins when sources share a tag.
			log.Warn().
				Str("identifier", record.Identifier()).
				Msg("Sources disagree on record, keeping the earliest")
		}
	}

	return nil
}

// deduplicate collapses value-like records that are structurally identical
// after namespace reconciliation, rewriting every referencing foreign key to
// the surviving copy. Identity-bearing kinds are never deduplicated.
func deduplicate(c *model.Collections) error {
	geometryRewrites := map[string]string{}
	seenGeometries := map[string]string{}
	for _, geometry := range c.Geometries.Iter() {
		checksum := geometry.ContentChecksum()
		if survivor, seen := seenGeometries[checksum]; seen {
			geometryRewrites[geometry.PrimaryIdentifier] = survivor
		} else {
			seenGeometries[checksum] = geometry.PrimaryIdentifier
		}
	}

	calendarRewrites := map[string]string{}
	seenCalendars := map[string]string{}
	for _, calendar := range c.Calendars.Iter() {
		checksum := calendar.ContentChecksum()
		if survivor, seen := seenCalendars[checksum]; seen {
			calendarRewrites[calendar.PrimaryIdentifier] = survivor
		} else {
			seenCalendars[checksum] = calendar.PrimaryIdentifier
		}
	}

	if len(geometryRewrites) == 0 && len(calendarRewrites) == 0 {
		return nil
	}

	rewriteGeometry := func(ref *string) {
		if survivor, duplicated := geometryRewrites[*ref]; duplicated {
			*ref = survivor
		}
	}

	for _, line := range c.Lines.Iter() {
		rewriteGeometry(&line.GeometryRef)
	}
	for _, route := range c.Routes.Iter() {
		rewriteGeometry(&route.GeometryRef)
	}
	for _, trip := range c.Trips.Iter() {
		rewriteGeometry(&trip.GeometryRef)
		if survivor, duplicated := calendarRewrites[trip.CalendarRef]; duplicated {
			trip.CalendarRef = survivor
		}
	}

	for id := range geometryRewrites {
		if err := c.Geometries.Remove(id); err != nil {
			return err
		}
	}
	for id := range calendarRewrites {
		if err := c.Calendars.Remove(id); err != nil {
			return err
		}
	}

	log.Info().
		Int("geometries", len(geometryRewrites)).
		Int("calendars", len(calendarRewrites)).
		Msg("Deduplicated value-like records")

	return nil
}

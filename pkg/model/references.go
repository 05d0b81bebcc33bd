package model

import (
	"fmt"

	"github.com/travigo/transmodel/pkg/ctm"
)

// Reference is one foreign-key occurrence: a field on a record of Kind that
// names a record of Target. A required field with an empty value is emitted
// with an empty TargetID so validation can report it; empty optional fields
// are skipped entirely.
type Reference struct {
	Kind       ctm.Kind
	Identifier string
	Field      string
	Target     ctm.Kind
	TargetID   string
}

// References enumerates every foreign-key occurrence in every collection, in
// insertion order. This walker is the single source of truth for which fields
// reference which collections; validation, relation construction and merge
// rewriting all derive from the same field list.
func (c *Collections) References() []Reference {
	var references []Reference

	add := func(kind ctm.Kind, id string, field string, target ctm.Kind, targetID string, required bool) {
		if targetID == "" && !required {
			return
		}

		references = append(references, Reference{
			Kind:       kind,
			Identifier: id,
			Field:      field,
			Target:     target,
			TargetID:   targetID,
		})
	}

	for _, dataset := range c.Datasets.Iter() {
		add(ctm.KindDataset, dataset.PrimaryIdentifier, "ContributorRef", ctm.KindContributor, dataset.ContributorRef, true)
	}

	for _, line := range c.Lines.Iter() {
		add(ctm.KindLine, line.PrimaryIdentifier, "NetworkRef", ctm.KindNetwork, line.NetworkRef, true)
		add(ctm.KindLine, line.PrimaryIdentifier, "CommercialModeRef", ctm.KindCommercialMode, line.CommercialModeRef, false)
		add(ctm.KindLine, line.PrimaryIdentifier, "GeometryRef", ctm.KindGeometry, line.GeometryRef, false)
		for i, commentRef := range line.CommentRefs {
			add(ctm.KindLine, line.PrimaryIdentifier, fmt.Sprintf("CommentRefs[%d]", i), ctm.KindComment, commentRef, true)
		}
	}

	for _, route := range c.Routes.Iter() {
		add(ctm.KindRoute, route.PrimaryIdentifier, "LineRef", ctm.KindLine, route.LineRef, true)
		add(ctm.KindRoute, route.PrimaryIdentifier, "GeometryRef", ctm.KindGeometry, route.GeometryRef, false)
		for i, commentRef := range route.CommentRefs {
			add(ctm.KindRoute, route.PrimaryIdentifier, fmt.Sprintf("CommentRefs[%d]", i), ctm.KindComment, commentRef, true)
		}
	}

	for _, trip := range c.Trips.Iter() {
		add(ctm.KindTrip, trip.PrimaryIdentifier, "RouteRef", ctm.KindRoute, trip.RouteRef, true)
		add(ctm.KindTrip, trip.PrimaryIdentifier, "CalendarRef", ctm.KindCalendar, trip.CalendarRef, true)
		add(ctm.KindTrip, trip.PrimaryIdentifier, "CompanyRef", ctm.KindCompany, trip.CompanyRef, false)
		add(ctm.KindTrip, trip.PrimaryIdentifier, "PhysicalModeRef", ctm.KindPhysicalMode, trip.PhysicalModeRef, false)
		add(ctm.KindTrip, trip.PrimaryIdentifier, "DatasetRef", ctm.KindDataset, trip.DatasetRef, false)
		add(ctm.KindTrip, trip.PrimaryIdentifier, "GeometryRef", ctm.KindGeometry, trip.GeometryRef, false)
		for i, commentRef := range trip.CommentRefs {
			add(ctm.KindTrip, trip.PrimaryIdentifier, fmt.Sprintf("CommentRefs[%d]", i), ctm.KindComment, commentRef, true)
		}
		for i, stopTime := range trip.StopTimes {
			add(ctm.KindTrip, trip.PrimaryIdentifier, fmt.Sprintf("StopTimes[%d].StopPointRef", i), ctm.KindStopPoint, stopTime.StopPointRef, true)
		}
	}

	for _, stopArea := range c.StopAreas.Iter() {
		for i, commentRef := range stopArea.CommentRefs {
			add(ctm.KindStopArea, stopArea.PrimaryIdentifier, fmt.Sprintf("CommentRefs[%d]", i), ctm.KindComment, commentRef, true)
		}
	}

	for _, stopPoint := range c.StopPoints.Iter() {
		add(ctm.KindStopPoint, stopPoint.PrimaryIdentifier, "StopAreaRef", ctm.KindStopArea, stopPoint.StopAreaRef, true)
		add(ctm.KindStopPoint, stopPoint.PrimaryIdentifier, "FareZoneRef", ctm.KindFareZone, stopPoint.FareZoneRef, false)
		for i, commentRef := range stopPoint.CommentRefs {
			add(ctm.KindStopPoint, stopPoint.PrimaryIdentifier, fmt.Sprintf("CommentRefs[%d]", i), ctm.KindComment, commentRef, true)
		}
	}

	for _, fareRule := range c.FareRules.Iter() {
		add(ctm.KindFareRule, fareRule.PrimaryIdentifier, "OriginZoneRef", ctm.KindFareZone, fareRule.OriginZoneRef, true)
		add(ctm.KindFareRule, fareRule.PrimaryIdentifier, "DestinationZoneRef", ctm.KindFareZone, fareRule.DestinationZoneRef, true)
		add(ctm.KindFareRule, fareRule.PrimaryIdentifier, "LineRef", ctm.KindLine, fareRule.LineRef, false)
	}

	for i, transfer := range c.Transfers {
		add(ctm.KindTransfer, fmt.Sprintf("#%d", i), "FromStopPointRef", ctm.KindStopPoint, transfer.FromStopPointRef, true)
		add(ctm.KindTransfer, fmt.Sprintf("#%d", i), "ToStopPointRef", ctm.KindStopPoint, transfer.ToStopPointRef, true)
	}

	for i, frequency := range c.Frequencies {
		add(ctm.KindFrequency, fmt.Sprintf("#%d", i), "TripRef", ctm.KindTrip, frequency.TripRef, true)
	}

	return references
}

package model

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/util"
)

// OrphanPolicy declares what happens to a record whose parent disappears.
// Drop-policy records are silently pruned by Sanitize; HardError-policy
// records make Sanitize fail and always fail validation.
type OrphanPolicy string

const (
	OrphanHardError OrphanPolicy = "HardError"
	OrphanDrop      OrphanPolicy = "Drop"
)

// OrphanPolicies declares the policy of every kind explicitly. Value-like
// attachments of a parent record (frequencies, transfers, comment and
// geometry links) are worthless without it and are dropped; everything that
// carries identity is a hard error when orphaned.
var OrphanPolicies = map[ctm.Kind]OrphanPolicy{
	ctm.KindNetwork:        OrphanHardError,
	ctm.KindLine:           OrphanHardError,
	ctm.KindRoute:          OrphanHardError,
	ctm.KindTrip:           OrphanHardError,
	ctm.KindStopArea:       OrphanHardError,
	ctm.KindStopPoint:      OrphanHardError,
	ctm.KindCalendar:       OrphanHardError,
	ctm.KindCompany:        OrphanHardError,
	ctm.KindContributor:    OrphanHardError,
	ctm.KindDataset:        OrphanHardError,
	ctm.KindPhysicalMode:   OrphanHardError,
	ctm.KindCommercialMode: OrphanHardError,
	ctm.KindFareZone:       OrphanHardError,
	ctm.KindFareRule:       OrphanDrop,
	ctm.KindComment:        OrphanDrop,
	ctm.KindGeometry:       OrphanDrop,
	ctm.KindTransfer:       OrphanDrop,
	ctm.KindFrequency:      OrphanDrop,
}

// OrphanPolicyError reports HardError-policy records that were left dangling
// after a prune pass.
type OrphanPolicyError struct {
	Violations []IntegrityViolation
}

func (e *OrphanPolicyError) Error() string {
	return fmt.Sprintf("%d records with a hard-error orphan policy have dangling references, first: %s", len(e.Violations), e.Violations[0])
}

// Sanitize prunes every Drop-policy orphan: frequencies and transfers whose
// endpoints are gone, and comment or geometry links pointing at removed
// records. It then re-checks the remaining references and fails if any
// HardError-policy record is still dangling.
func (c *Collections) Sanitize() error {
	frequenciesBefore := len(c.Frequencies)
	util.InPlaceFilter(&c.Frequencies, func(frequency ctm.Frequency) bool {
		return c.Trips.Contains(frequency.TripRef)
	})
	if dropped := frequenciesBefore - len(c.Frequencies); dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Pruned frequencies referencing missing trips")
	}

	transfersBefore := len(c.Transfers)
	util.InPlaceFilter(&c.Transfers, func(transfer ctm.Transfer) bool {
		return c.StopPoints.Contains(transfer.FromStopPointRef) && c.StopPoints.Contains(transfer.ToStopPointRef)
	})
	if dropped := transfersBefore - len(c.Transfers); dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Pruned transfers referencing missing stop points")
	}

	fareRulesBefore := c.FareRules.Len()
	for _, id := range c.FareRules.IDs() {
		fareRule, _ := c.FareRules.GetByID(id)
		if !c.FareZones.Contains(fareRule.OriginZoneRef) ||
			!c.FareZones.Contains(fareRule.DestinationZoneRef) ||
			(fareRule.LineRef != "" && !c.Lines.Contains(fareRule.LineRef)) {
			if err := c.FareRules.Remove(id); err != nil {
				return err
			}
		}
	}
	if dropped := fareRulesBefore - c.FareRules.Len(); dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Pruned fare rules referencing missing zones or lines")
	}

	c.pruneDanglingLinks()

	var hard []IntegrityViolation
	for _, violation := range c.Validate() {
		if OrphanPolicies[violation.Kind] == OrphanHardError {
			hard = append(hard, violation)
		}
	}
	if len(hard) > 0 {
		return &OrphanPolicyError{Violations: hard}
	}

	return nil
}

// pruneDanglingLinks clears comment and geometry references pointing at
// records that no longer exist. These links are navigation sugar, losing the
// target just loses the link.
func (c *Collections) pruneDanglingLinks() {
	keepComment := func(id string) bool { return c.Comments.Contains(id) }

	for _, line := range c.Lines.Iter() {
		util.InPlaceFilter(&line.CommentRefs, keepComment)
		if line.GeometryRef != "" && !c.Geometries.Contains(line.GeometryRef) {
			line.GeometryRef = ""
		}
	}
	for _, route := range c.Routes.Iter() {
		util.InPlaceFilter(&route.CommentRefs, keepComment)
		if route.GeometryRef != "" && !c.Geometries.Contains(route.GeometryRef) {
			route.GeometryRef = ""
		}
	}
	for _, trip := range c.Trips.Iter() {
		util.InPlaceFilter(&trip.CommentRefs, keepComment)
		if trip.GeometryRef != "" && !c.Geometries.Contains(trip.GeometryRef) {
			trip.GeometryRef = ""
		}
	}
	for _, stopArea := range c.StopAreas.Iter() {
		util.InPlaceFilter(&stopArea.CommentRefs, keepComment)
	}
	for _, stopPoint := range c.StopPoints.Iter() {
		util.InPlaceFilter(&stopPoint.CommentRefs, keepComment)
	}
}

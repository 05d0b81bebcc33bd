package model

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/rs/zerolog/log"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/util"
)

type FilterAction string

const (
	// FilterExtract keeps only the subgraph of the named networks.
	FilterExtract FilterAction = "extract"
	// FilterRemove drops the subgraph of the named networks.
	FilterRemove FilterAction = "remove"
)

// FilterNetworks keeps or removes the whole subgraph reachable from the given
// networks: their lines, the routes and trips under them, and every stop,
// calendar, mode, company, comment and geometry those still reference.
// Records shared with a surviving network survive.
func (c *Collections) FilterNetworks(action FilterAction, networkIDs []string) error {
	if action != FilterExtract && action != FilterRemove {
		return fmt.Errorf("unknown filter action %s", action)
	}

	selected := map[string]bool{}
	for _, id := range networkIDs {
		if !c.Networks.Contains(id) {
			return fmt.Errorf("network %s does not exist", id)
		}
		selected[id] = true
	}

	keepNetwork := func(id string) bool {
		if action == FilterExtract {
			return selected[id]
		}
		return !selected[id]
	}

	keptNetworks := map[string]bool{}
	for _, network := range c.Networks.Iter() {
		if keepNetwork(network.PrimaryIdentifier) {
			keptNetworks[network.PrimaryIdentifier] = true
		}
	}

	keptLines := map[string]bool{}
	for _, line := range c.Lines.Iter() {
		if keptNetworks[line.NetworkRef] {
			keptLines[line.PrimaryIdentifier] = true
		}
	}

	keptRoutes := map[string]bool{}
	for _, route := range c.Routes.Iter() {
		if keptLines[route.LineRef] {
			keptRoutes[route.PrimaryIdentifier] = true
		}
	}

	keptTrips := map[string]bool{}
	keptCalendars := map[string]bool{}
	keptCompanies := map[string]bool{}
	keptPhysicalModes := map[string]bool{}
	keptDatasets := map[string]bool{}
	keptStopPoints := map[string]bool{}
	for _, trip := range c.Trips.Iter() {
		if !keptRoutes[trip.RouteRef] {
			continue
		}
		keptTrips[trip.PrimaryIdentifier] = true
		keptCalendars[trip.CalendarRef] = true
		keptCompanies[trip.CompanyRef] = true
		keptPhysicalModes[trip.PhysicalModeRef] = true
		keptDatasets[trip.DatasetRef] = true
		for _, stopTime := range trip.StopTimes {
			keptStopPoints[stopTime.StopPointRef] = true
		}
	}

	keptStopAreas := map[string]bool{}
	keptFareZones := map[string]bool{}
	for _, stopPoint := range c.StopPoints.Iter() {
		if !keptStopPoints[stopPoint.PrimaryIdentifier] {
			continue
		}
		keptStopAreas[stopPoint.StopAreaRef] = true
		if stopPoint.FareZoneRef != "" {
			keptFareZones[stopPoint.FareZoneRef] = true
		}
	}

	keptCommercialModes := map[string]bool{}
	for _, line := range c.Lines.Iter() {
		if keptLines[line.PrimaryIdentifier] && line.CommercialModeRef != "" {
			keptCommercialModes[line.CommercialModeRef] = true
		}
	}

	keptContributors := map[string]bool{}
	for _, dataset := range c.Datasets.Iter() {
		if keptDatasets[dataset.PrimaryIdentifier] {
			keptContributors[dataset.ContributorRef] = true
		}
	}

	filtered := NewCollections()

	for _, network := range c.Networks.Iter() {
		if keptNetworks[network.PrimaryIdentifier] {
			if _, err := filtered.Networks.Insert(network); err != nil {
				return err
			}
		}
	}
	for _, mode := range c.CommercialModes.Iter() {
		if keptCommercialModes[mode.PrimaryIdentifier] {
			if _, err := filtered.CommercialModes.Insert(mode); err != nil {
				return err
			}
		}
	}
	for _, mode := range c.PhysicalModes.Iter() {
		if keptPhysicalModes[mode.PrimaryIdentifier] {
			if _, err := filtered.PhysicalModes.Insert(mode); err != nil {
				return err
			}
		}
	}
	for _, company := range c.Companies.Iter() {
		if keptCompanies[company.PrimaryIdentifier] {
			if _, err := filtered.Companies.Insert(company); err != nil {
				return err
			}
		}
	}
	for _, contributor := range c.Contributors.Iter() {
		if keptContributors[contributor.PrimaryIdentifier] {
			if _, err := filtered.Contributors.Insert(contributor); err != nil {
				return err
			}
		}
	}
	for _, dataset := range c.Datasets.Iter() {
		if keptDatasets[dataset.PrimaryIdentifier] {
			if _, err := filtered.Datasets.Insert(dataset); err != nil {
				return err
			}
		}
	}
	for _, line := range c.Lines.Iter() {
		if keptLines[line.PrimaryIdentifier] {
			if _, err := filtered.Lines.Insert(line); err != nil {
				return err
			}
		}
	}
	for _, route := range c.Routes.Iter() {
		if keptRoutes[route.PrimaryIdentifier] {
			if _, err := filtered.Routes.Insert(route); err != nil {
				return err
			}
		}
	}
	for _, trip := range c.Trips.Iter() {
		if keptTrips[trip.PrimaryIdentifier] {
			if _, err := filtered.Trips.Insert(trip); err != nil {
				return err
			}
		}
	}
	for _, stopArea := range c.StopAreas.Iter() {
		if keptStopAreas[stopArea.PrimaryIdentifier] {
			if _, err := filtered.StopAreas.Insert(stopArea); err != nil {
				return err
			}
		}
	}
	for _, stopPoint := range c.StopPoints.Iter() {
		if keptStopPoints[stopPoint.PrimaryIdentifier] {
			if _, err := filtered.StopPoints.Insert(stopPoint); err != nil {
				return err
			}
		}
	}
	for _, calendar := range c.Calendars.Iter() {
		if keptCalendars[calendar.PrimaryIdentifier] {
			if _, err := filtered.Calendars.Insert(calendar); err != nil {
				return err
			}
		}
	}
	for _, fareZone := range c.FareZones.Iter() {
		if keptFareZones[fareZone.PrimaryIdentifier] {
			if _, err := filtered.FareZones.Insert(fareZone); err != nil {
				return err
			}
		}
	}
	for _, fareRule := range c.FareRules.Iter() {
		keep := keptFareZones[fareRule.OriginZoneRef] && keptFareZones[fareRule.DestinationZoneRef]
		if fareRule.LineRef != "" && !keptLines[fareRule.LineRef] {
			keep = false
		}
		if keep {
			if _, err := filtered.FareRules.Insert(fareRule); err != nil {
				return err
			}
		}
	}

	// Comments and geometries are kept when anything surviving still links
	// to them; everything else is carried over and the dangling links are
	// cleared afterwards.
	for _, comment := range c.Comments.Iter() {
		if _, err := filtered.Comments.Insert(comment); err != nil {
			return err
		}
	}
	for _, geometry := range c.Geometries.Iter() {
		if _, err := filtered.Geometries.Insert(geometry); err != nil {
			return err
		}
	}

	filtered.Transfers = c.Transfers
	util.InPlaceFilter(&filtered.Transfers, func(transfer ctm.Transfer) bool {
		return keptStopPoints[transfer.FromStopPointRef] && keptStopPoints[transfer.ToStopPointRef]
	})

	filtered.Frequencies = c.Frequencies
	util.InPlaceFilter(&filtered.Frequencies, func(frequency ctm.Frequency) bool {
		return keptTrips[frequency.TripRef]
	})

	filtered.dropUnreferenced()

	log.Info().
		Str("action", string(action)).
		Strs("networks", networkIDs).
		Int("lines", filtered.Lines.Len()).
		Int("trips", filtered.Trips.Len()).
		Msg("Filtered model")

	*c = *filtered

	return nil
}

// FilterNetworksExpr selects networks with an expression evaluated against
// each Network record, then filters their subgraph. Example expression:
// `Name startsWith "TG" or PrimaryIdentifier == "network1"`.
func (c *Collections) FilterNetworksExpr(action FilterAction, expression string) error {
	program, err := expr.Compile(expression, expr.Env(ctm.Network{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("invalid network filter expression: %w", err)
	}

	var selected []string
	for _, network := range c.Networks.Iter() {
		matches, err := expr.Run(program, *network)
		if err != nil {
			return fmt.Errorf("network filter expression failed on %s: %w", network.PrimaryIdentifier, err)
		}

		if matches.(bool) {
			selected = append(selected, network.PrimaryIdentifier)
		}
	}

	if len(selected) == 0 && action == FilterExtract {
		return fmt.Errorf("network filter expression %q matched nothing", expression)
	}

	return c.FilterNetworks(action, selected)
}

// dropUnreferenced removes comments and geometries nothing links to anymore.
func (c *Collections) dropUnreferenced() {
	referencedComments := map[string]bool{}
	referencedGeometries := map[string]bool{}

	for _, reference := range c.References() {
		switch reference.Target {
		case ctm.KindComment:
			referencedComments[reference.TargetID] = true
		case ctm.KindGeometry:
			referencedGeometries[reference.TargetID] = true
		}
	}

	for _, id := range c.Comments.IDs() {
		if !referencedComments[id] {
			c.Comments.Remove(id)
		}
	}
	for _, id := range c.Geometries.IDs() {
		if !referencedGeometries[id] {
			c.Geometries.Remove(id)
		}
	}
}

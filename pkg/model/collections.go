package model

import (
	"github.com/jinzhu/copier"

	"github.com/travigo/transmodel/pkg/collection"
	"github.com/travigo/transmodel/pkg/ctm"
)

// Collections is the mutable builder stage of a model. Loaders insert records
// in any order they like, forward references included, as long as every
// reference resolves by the time the collections are validated into a Model.
type Collections struct {
	Networks        *collection.Collection[*ctm.Network]
	CommercialModes *collection.Collection[*ctm.CommercialMode]
	PhysicalModes   *collection.Collection[*ctm.PhysicalMode]
	Companies       *collection.Collection[*ctm.Company]
	Contributors    *collection.Collection[*ctm.Contributor]
	Datasets        *collection.Collection[*ctm.Dataset]
	Lines           *collection.Collection[*ctm.Line]
	Routes          *collection.Collection[*ctm.Route]
	Trips           *collection.Collection[*ctm.Trip]
	StopAreas       *collection.Collection[*ctm.StopArea]
	StopPoints      *collection.Collection[*ctm.StopPoint]
	Calendars       *collection.Collection[*ctm.Calendar]
	Comments        *collection.Collection[*ctm.Comment]
	Geometries      *collection.Collection[*ctm.Geometry]
	FareZones       *collection.Collection[*ctm.FareZone]
	FareRules       *collection.Collection[*ctm.FareRule]

	// Keyed by position only, no independent identifiers.
	Transfers   []ctm.Transfer
	Frequencies []ctm.Frequency
}

func NewCollections() *Collections {
	return &Collections{
		Networks:        collection.NewCollection[*ctm.Network](),
		CommercialModes: collection.NewCollection[*ctm.CommercialMode](),
		PhysicalModes:   collection.NewCollection[*ctm.PhysicalMode](),
		Companies:       collection.NewCollection[*ctm.Company](),
		Contributors:    collection.NewCollection[*ctm.Contributor](),
		Datasets:        collection.NewCollection[*ctm.Dataset](),
		Lines:           collection.NewCollection[*ctm.Line](),
		Routes:          collection.NewCollection[*ctm.Route](),
		Trips:           collection.NewCollection[*ctm.Trip](),
		StopAreas:       collection.NewCollection[*ctm.StopArea](),
		StopPoints:      collection.NewCollection[*ctm.StopPoint](),
		Calendars:       collection.NewCollection[*ctm.Calendar](),
		Comments:        collection.NewCollection[*ctm.Comment](),
		Geometries:      collection.NewCollection[*ctm.Geometry](),
		FareZones:       collection.NewCollection[*ctm.FareZone](),
		FareRules:       collection.NewCollection[*ctm.FareRule](),
	}
}

// Contains reports whether the collection for the given kind holds a record
// with the given identifier.
func (c *Collections) Contains(kind ctm.Kind, id string) bool {
	switch kind {
	case ctm.KindNetwork:
		return c.Networks.Contains(id)
	case ctm.KindCommercialMode:
		return c.CommercialModes.Contains(id)
	case ctm.KindPhysicalMode:
		return c.PhysicalModes.Contains(id)
	case ctm.KindCompany:
		return c.Companies.Contains(id)
	case ctm.KindContributor:
		return c.Contributors.Contains(id)
	case ctm.KindDataset:
		return c.Datasets.Contains(id)
	case ctm.KindLine:
		return c.Lines.Contains(id)
	case ctm.KindRoute:
		return c.Routes.Contains(id)
	case ctm.KindTrip:
		return c.Trips.Contains(id)
	case ctm.KindStopArea:
		return c.StopAreas.Contains(id)
	case ctm.KindStopPoint:
		return c.StopPoints.Contains(id)
	case ctm.KindCalendar:
		return c.Calendars.Contains(id)
	case ctm.KindComment:
		return c.Comments.Contains(id)
	case ctm.KindGeometry:
		return c.Geometries.Contains(id)
	case ctm.KindFareZone:
		return c.FareZones.Contains(id)
	case ctm.KindFareRule:
		return c.FareRules.Contains(id)
	}

	return false
}

func (c *Collections) freeze() {
	c.Networks.Freeze()
	c.CommercialModes.Freeze()
	c.PhysicalModes.Freeze()
	c.Companies.Freeze()
	c.Contributors.Freeze()
	c.Datasets.Freeze()
	c.Lines.Freeze()
	c.Routes.Freeze()
	c.Trips.Freeze()
	c.StopAreas.Freeze()
	c.StopPoints.Freeze()
	c.Calendars.Freeze()
	c.Comments.Freeze()
	c.Geometries.Freeze()
	c.FareZones.Freeze()
	c.FareRules.Freeze()
}

// Clone deep copies every record into a fresh unfrozen Collections. Used to
// seed a new builder from a validated model without ever mutating the
// original.
func (c *Collections) Clone() (*Collections, error) {
	cloned := NewCollections()

	if err := cloneCollection[ctm.Network](c.Networks, cloned.Networks); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.CommercialMode](c.CommercialModes, cloned.CommercialModes); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.PhysicalMode](c.PhysicalModes, cloned.PhysicalModes); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Company](c.Companies, cloned.Companies); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Contributor](c.Contributors, cloned.Contributors); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Dataset](c.Datasets, cloned.Datasets); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Line](c.Lines, cloned.Lines); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Route](c.Routes, cloned.Routes); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Trip](c.Trips, cloned.Trips); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.StopArea](c.StopAreas, cloned.StopAreas); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.StopPoint](c.StopPoints, cloned.StopPoints); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Calendar](c.Calendars, cloned.Calendars); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Comment](c.Comments, cloned.Comments); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.Geometry](c.Geometries, cloned.Geometries); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.FareZone](c.FareZones, cloned.FareZones); err != nil {
		return nil, err
	}
	if err := cloneCollection[ctm.FareRule](c.FareRules, cloned.FareRules); err != nil {
		return nil, err
	}

	if err := copier.CopyWithOption(&cloned.Transfers, c.Transfers, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	if err := copier.CopyWithOption(&cloned.Frequencies, c.Frequencies, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}

	return cloned, nil
}

func cloneCollection[T any, PT interface {
	*T
	collection.Identifiable
}](source *collection.Collection[PT], destination *collection.Collection[PT]) error {
	for _, record := range source.Iter() {
		copied := new(T)
		if err := copier.CopyWithOption(copied, record, copier.Option{DeepCopy: true}); err != nil {
			return err
		}

		if _, err := destination.Insert(PT(copied)); err != nil {
			return err
		}
	}

	return nil
}

// Package snapshot reads and writes the model's own JSON interchange format.
// It is the reference loader/writer pair: reading populates a mutable builder
// that still has to be validated, writing iterates a validated model in
// insertion order so output is deterministic.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/rs/zerolog/log"

	"github.com/travigo/transmodel/pkg/collection"
	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/model"
)

type document struct {
	Networks        []*ctm.Network        `json:"networks,omitempty"`
	CommercialModes []*ctm.CommercialMode `json:"commercial_modes,omitempty"`
	PhysicalModes   []*ctm.PhysicalMode   `json:"physical_modes,omitempty"`
	Companies       []*ctm.Company        `json:"companies,omitempty"`
	Contributors    []*ctm.Contributor    `json:"contributors,omitempty"`
	Datasets        []*ctm.Dataset        `json:"datasets,omitempty"`
	Lines           []*ctm.Line           `json:"lines,omitempty"`
	Routes          []*ctm.Route          `json:"routes,omitempty"`
	Trips           []*ctm.Trip           `json:"trips,omitempty"`
	StopAreas       []*ctm.StopArea       `json:"stop_areas,omitempty"`
	StopPoints      []*ctm.StopPoint      `json:"stop_points,omitempty"`
	Calendars       []*ctm.Calendar       `json:"calendars,omitempty"`
	Comments        []*ctm.Comment        `json:"comments,omitempty"`
	Geometries      []*ctm.Geometry       `json:"geometries,omitempty"`
	FareZones       []*ctm.FareZone       `json:"fare_zones,omitempty"`
	FareRules       []*ctm.FareRule       `json:"fare_rules,omitempty"`

	Transfers   []ctm.Transfer  `json:"transfers,omitempty"`
	Frequencies []ctm.Frequency `json:"frequencies,omitempty"`
}

// Read decodes a snapshot into a fresh builder. The result has not been
// validated; records may arrive in any order, so dangling references are only
// diagnosed when the caller validates.
func Read(reader io.Reader) (*model.Collections, error) {
	var doc document
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	collections := model.NewCollections()

	if err := insertAll(collections.Networks, doc.Networks); err != nil {
		return nil, err
	}
	if err := insertAll(collections.CommercialModes, doc.CommercialModes); err != nil {
		return nil, err
	}
	if err := insertAll(collections.PhysicalModes, doc.PhysicalModes); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Companies, doc.Companies); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Contributors, doc.Contributors); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Datasets, doc.Datasets); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Lines, doc.Lines); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Routes, doc.Routes); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Trips, doc.Trips); err != nil {
		return nil, err
	}
	if err := insertAll(collections.StopAreas, doc.StopAreas); err != nil {
		return nil, err
	}
	if err := insertAll(collections.StopPoints, doc.StopPoints); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Calendars, doc.Calendars); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Comments, doc.Comments); err != nil {
		return nil, err
	}
	if err := insertAll(collections.Geometries, doc.Geometries); err != nil {
		return nil, err
	}
	if err := insertAll(collections.FareZones, doc.FareZones); err != nil {
		return nil, err
	}
	if err := insertAll(collections.FareRules, doc.FareRules); err != nil {
		return nil, err
	}

	collections.Transfers = doc.Transfers
	collections.Frequencies = doc.Frequencies

	return collections, nil
}

func insertAll[T collection.Identifiable](destination *collection.Collection[T], records []T) error {
	for i, record := range records {
		// A JSON null in a record array decodes to a nil pointer.
		if value := reflect.ValueOf(record); value.Kind() == reflect.Pointer && value.IsNil() {
			return fmt.Errorf("snapshot contains a null %s record at position %d", value.Type().Elem().Name(), i)
		}

		if _, err := destination.Insert(record); err != nil {
			return err
		}
	}

	return nil
}

func ReadFile(path string) (*model.Collections, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	log.Debug().Str("path", path).Msg("Loading snapshot")

	return Read(file)
}

// Write encodes a validated model. Collections are iterated in insertion
// order, so writing the same model twice produces identical bytes.
func Write(writer io.Writer, m *model.Model) error {
	collections := m.Collections()

	doc := document{
		Transfers:   collections.Transfers,
		Frequencies: collections.Frequencies,
	}

	for _, network := range collections.Networks.Iter() {
		doc.Networks = append(doc.Networks, network)
	}
	for _, mode := range collections.CommercialModes.Iter() {
		doc.CommercialModes = append(doc.CommercialModes, mode)
	}
	for _, mode := range collections.PhysicalModes.Iter() {
		doc.PhysicalModes = append(doc.PhysicalModes, mode)
	}
	for _, company := range collections.Companies.Iter() {
		doc.Companies = append(doc.Companies, company)
	}
	for _, contributor := range collections.Contributors.Iter() {
		doc.Contributors = append(doc.Contributors, contributor)
	}
	for _, dataset := range collections.Datasets.Iter() {
		doc.Datasets = append(doc.Datasets, dataset)
	}
	for _, line := range collections.Lines.Iter() {
		doc.Lines = append(doc.Lines, line)
	}
	for _, route := range collections.Routes.Iter() {
		doc.Routes = append(doc.Routes, route)
	}
	for _, trip := range collections.Trips.Iter() {
		doc.Trips = append(doc.Trips, trip)
	}
	for _, stopArea := range collections.StopAreas.Iter() {
		doc.StopAreas = append(doc.StopAreas, stopArea)
	}
	for _, stopPoint := range collections.StopPoints.Iter() {
		doc.StopPoints = append(doc.StopPoints, stopPoint)
	}
	for _, calendar := range collections.Calendars.Iter() {
		doc.Calendars = append(doc.Calendars, calendar)
	}
	for _, comment := range collections.Comments.Iter() {
		doc.Comments = append(doc.Comments, comment)
	}
	for _, geometry := range collections.Geometries.Iter() {
		doc.Geometries = append(doc.Geometries, geometry)
	}
	for _, fareZone := range collections.FareZones.Iter() {
		doc.FareZones = append(doc.FareZones, fareZone)
	}
	for _, fareRule := range collections.FareRules.Iter() {
		doc.FareRules = append(doc.FareRules, fareRule)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(doc)
}

func WriteFile(path string, m *model.Model) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	log.Debug().Str("path", path).Msg("Writing snapshot")

	return Write(file, m)
}

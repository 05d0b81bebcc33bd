package relations

import (
	"golang.org/x/exp/slices"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/util"
)

type Definition struct {
	Name   string
	Source ctm.Kind
	Target ctm.Kind
}

// Relation is a derived bidirectional index over the foreign keys one
// collection holds into another. It never owns records; it is rebuilt or
// incrementally updated from the collections it was declared over, and an
// incremental update must always leave it identical to a full rebuild.
type Relation struct {
	definition Definition

	sourceIDs func() []string
	extract   func(sourceID string) []string

	forward map[string][]string
	reverse map[string][]string
}

// NewRelation declares a relation. sourceIDs enumerates the source collection
// in insertion order; extract returns the ordered target identifiers a single
// source record references. The relation starts empty, call Rebuild before
// reading.
func NewRelation(definition Definition, sourceIDs func() []string, extract func(sourceID string) []string) *Relation {
	return &Relation{
		definition: definition,
		sourceIDs:  sourceIDs,
		extract:    extract,
		forward:    map[string][]string{},
		reverse:    map[string][]string{},
	}
}

func (r *Relation) Definition() Definition {
	return r.definition
}

// Rebuild recomputes the whole index from the current collection contents.
func (r *Relation) Rebuild() {
	r.forward = map[string][]string{}
	r.reverse = map[string][]string{}

	for _, sourceID := range r.sourceIDs() {
		r.index(sourceID)
	}
}

// OnInsert indexes a single newly inserted source record.
func (r *Relation) OnInsert(sourceID string) {
	r.index(sourceID)
}

// OnRemove drops a single source record from the index.
func (r *Relation) OnRemove(sourceID string) {
	targets, exists := r.forward[sourceID]
	if !exists {
		return
	}
	delete(r.forward, sourceID)

	for _, targetID := range targets {
		sources := r.reverse[targetID]
		util.InPlaceFilter(&sources, func(id string) bool {
			return id != sourceID
		})

		if len(sources) == 0 {
			delete(r.reverse, targetID)
		} else {
			r.reverse[targetID] = sources
		}
	}
}

// OnUpdate re-extracts a source record whose foreign keys may have changed.
func (r *Relation) OnUpdate(sourceID string) {
	r.OnRemove(sourceID)
	r.OnInsert(sourceID)
}

// RelatedTo returns the ordered target identifiers referenced by the given
// source record.
func (r *Relation) RelatedTo(sourceID string) []string {
	return slices.Clone(r.forward[sourceID])
}

// Referencing returns the set of source identifiers referencing the given
// target, sorted for determinism.
func (r *Relation) Referencing(targetID string) []string {
	sources := slices.Clone(r.reverse[targetID])
	slices.Sort(sources)

	return sources
}

func (r *Relation) index(sourceID string) {
	targets := r.extract(sourceID)
	if len(targets) == 0 {
		return
	}

	r.forward[sourceID] = slices.Clone(targets)
	for _, targetID := range targets {
		if !slices.Contains(r.reverse[targetID], sourceID) {
			r.reverse[targetID] = append(r.reverse[targetID], sourceID)
		}
	}
}

package collection

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/jinzhu/copier"
)

// Index is the position of a record within its Collection, assigned at
// insertion time. Indices are only meaningful within the lifetime of the
// Collection instance they came from.
type Index int

type Identifiable interface {
	Identifier() string
}

// Collection is an ordered container of records of a single kind. Every
// record is reachable by its identifier and by the positional index assigned
// when it was inserted. Iteration always follows insertion order.
type Collection[T Identifiable] struct {
	records []T
	byID    map[string]Index
	frozen  bool
}

func NewCollection[T Identifiable]() *Collection[T] {
	return &Collection[T]{
		byID: map[string]Index{},
	}
}

// Insert appends the record and assigns it the next sequential index. A
// record whose identifier already exists in the collection is rejected
// immediately.
func (c *Collection[T]) Insert(record T) (Index, error) {
	if c.frozen {
		return 0, ErrFrozen
	}

	id := record.Identifier()
	if _, exists := c.byID[id]; exists {
		return 0, &DuplicateIdentifierError{Identifier: id}
	}

	index := Index(len(c.records))
	c.records = append(c.records, record)
	c.byID[id] = index

	return index, nil
}

func (c *Collection[T]) GetByID(id string) (T, bool) {
	index, exists := c.byID[id]
	if !exists {
		var zero T
		return zero, false
	}

	return c.records[index], true
}

func (c *Collection[T]) GetByIndex(index Index) (T, bool) {
	if index < 0 || int(index) >= len(c.records) {
		var zero T
		return zero, false
	}

	return c.records[index], true
}

func (c *Collection[T]) IndexOf(id string) (Index, bool) {
	index, exists := c.byID[id]
	return index, exists
}

func (c *Collection[T]) Contains(id string) bool {
	_, exists := c.byID[id]
	return exists
}

func (c *Collection[T]) Len() int {
	return len(c.records)
}

// Iter yields every record with its index, in insertion order.
func (c *Collection[T]) Iter() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		for i, record := range c.records {
			if !yield(Index(i), record) {
				return
			}
		}
	}
}

// IDs returns every identifier in insertion order.
func (c *Collection[T]) IDs() []string {
	ids := make([]string, 0, len(c.records))
	for _, record := range c.records {
		ids = append(ids, record.Identifier())
	}

	return ids
}

// Update applies the mutator to the record with the given identifier. The
// mutator runs on a staged deep copy: if it changes the record's identifier
// the update is rejected and the stored record is left untouched, so the
// identifier mapping can never drift from the records.
func (c *Collection[T]) Update(id string, mutator func(T)) error {
	if c.frozen {
		return ErrFrozen
	}

	index, exists := c.byID[id]
	if !exists {
		return &NotFoundError{Identifier: id}
	}

	staged, err := deepCopy(c.records[index])
	if err != nil {
		return err
	}

	mutator(staged)

	if staged.Identifier() != id {
		return fmt.Errorf("update of %s changed its identifier to %s", id, staged.Identifier())
	}

	c.records[index] = staged

	return nil
}

func deepCopy[T Identifiable](record T) (T, error) {
	var staged T

	value := reflect.ValueOf(&staged).Elem()
	if value.Kind() == reflect.Pointer {
		value.Set(reflect.New(value.Type().Elem()))
		return staged, copier.CopyWithOption(staged, record, copier.Option{DeepCopy: true})
	}

	return staged, copier.CopyWithOption(&staged, record, copier.Option{DeepCopy: true})
}

// Remove deletes the record with the given identifier and renumbers every
// record inserted after it. Any reference to the removed record held
// elsewhere becomes dangling; reconciling those is the responsibility of the
// enclosing model, not of this collection.
func (c *Collection[T]) Remove(id string) error {
	if c.frozen {
		return ErrFrozen
	}

	index, exists := c.byID[id]
	if !exists {
		return &NotFoundError{Identifier: id}
	}

	c.records = append(c.records[:index], c.records[index+1:]...)

	delete(c.byID, id)
	for i := int(index); i < len(c.records); i++ {
		c.byID[c.records[i].Identifier()] = Index(i)
	}

	return nil
}

// Freeze permanently disables Insert, Update and Remove on this instance.
// A validated model freezes its collections before handing them to readers.
func (c *Collection[T]) Freeze() {
	c.frozen = true
}

func (c *Collection[T]) Frozen() bool {
	return c.frozen
}

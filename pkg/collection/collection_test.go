package collection_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travigo/transmodel/pkg/collection"
)

type record struct {
	ID   string
	Name string
}

func (r *record) Identifier() string {
	return r.ID
}

func TestInsertAssignsSequentialIndices(t *testing.T) {
	c := collection.NewCollection[*record]()

	first, err := c.Insert(&record{ID: "a"})
	require.NoError(t, err)
	second, err := c.Insert(&record{ID: "b"})
	require.NoError(t, err)

	assert.Equal(t, collection.Index(0), first)
	assert.Equal(t, collection.Index(1), second)
	assert.Equal(t, 2, c.Len())
}

func TestInsertRejectsDuplicateIdentifier(t *testing.T) {
	c := collection.NewCollection[*record]()

	_, err := c.Insert(&record{ID: "a", Name: "first"})
	require.NoError(t, err)

	_, err = c.Insert(&record{ID: "a", Name: "second"})
	require.Error(t, err)

	var duplicate *collection.DuplicateIdentifierError
	require.True(t, errors.As(err, &duplicate))
	assert.Equal(t, "a", duplicate.Identifier)

	// The original record is untouched
	existing, found := c.GetByID("a")
	require.True(t, found)
	assert.Equal(t, "first", existing.Name)
	assert.Equal(t, 1, c.Len())
}

func TestGetByIDAndIndex(t *testing.T) {
	c := collection.NewCollection[*record]()

	index, err := c.Insert(&record{ID: "a", Name: "alpha"})
	require.NoError(t, err)

	byID, found := c.GetByID("a")
	require.True(t, found)
	byIndex, found := c.GetByIndex(index)
	require.True(t, found)

	assert.Same(t, byID, byIndex)

	_, found = c.GetByID("missing")
	assert.False(t, found)
	_, found = c.GetByIndex(collection.Index(99))
	assert.False(t, found)
}

func TestIterFollowsInsertionOrder(t *testing.T) {
	c := collection.NewCollection[*record]()

	ids := []string{"z", "a", "m", "b"}
	for _, id := range ids {
		_, err := c.Insert(&record{ID: id})
		require.NoError(t, err)
	}

	var seen []string
	var indices []collection.Index
	for index, r := range c.Iter() {
		indices = append(indices, index)
		seen = append(seen, r.ID)
	}

	assert.Equal(t, ids, seen)
	assert.Equal(t, []collection.Index{0, 1, 2, 3}, indices)
	assert.Equal(t, ids, c.IDs())
}

func TestIndexStability(t *testing.T) {
	c := collection.NewCollection[*record]()

	for _, id := range []string{"a", "b", "c"} {
		_, err := c.Insert(&record{ID: id})
		require.NoError(t, err)
	}

	index, found := c.IndexOf("b")
	require.True(t, found)

	// Indices stay put until a removal renumbers the collection
	require.NoError(t, c.Update("b", func(r *record) { r.Name = "updated" }))
	after, found := c.GetByIndex(index)
	require.True(t, found)
	assert.Equal(t, "b", after.ID)
	assert.Equal(t, "updated", after.Name)
}

func TestRemoveRenumbers(t *testing.T) {
	c := collection.NewCollection[*record]()

	for _, id := range []string{"a", "b", "c"} {
		_, err := c.Insert(&record{ID: id})
		require.NoError(t, err)
	}

	require.NoError(t, c.Remove("a"))

	assert.Equal(t, []string{"b", "c"}, c.IDs())

	index, found := c.IndexOf("c")
	require.True(t, found)
	assert.Equal(t, collection.Index(1), index)

	var notFound *collection.NotFoundError
	err := c.Remove("a")
	require.True(t, errors.As(err, &notFound))
}

func TestUpdateRejectsIdentifierChange(t *testing.T) {
	c := collection.NewCollection[*record]()

	_, err := c.Insert(&record{ID: "a", Name: "alpha"})
	require.NoError(t, err)
	_, err = c.Insert(&record{ID: "b", Name: "beta"})
	require.NoError(t, err)

	err = c.Update("a", func(r *record) {
		r.ID = "b"
		r.Name = "hijacked"
	})
	require.Error(t, err)

	// A rejected update leaves the stored record completely untouched
	assert.Equal(t, []string{"a", "b"}, c.IDs())

	first, found := c.GetByID("a")
	require.True(t, found)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "alpha", first.Name)

	second, found := c.GetByID("b")
	require.True(t, found)
	assert.Equal(t, "beta", second.Name)

	err = c.Update("missing", func(r *record) {})
	var notFound *collection.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

// Mutations staged through Update must not leak into the collection before
// the identifier check passes, even through aliased pointers held by the
// caller.
func TestUpdateCommitsOnlyAcceptedMutations(t *testing.T) {
	c := collection.NewCollection[*record]()

	inserted := &record{ID: "a", Name: "alpha"}
	_, err := c.Insert(inserted)
	require.NoError(t, err)

	require.NoError(t, c.Update("a", func(r *record) { r.Name = "updated" }))

	stored, found := c.GetByID("a")
	require.True(t, found)
	assert.Equal(t, "updated", stored.Name)

	// The pointer handed to Insert is not the commit path
	assert.Equal(t, "alpha", inserted.Name)
}

func TestFrozenCollectionRejectsMutation(t *testing.T) {
	c := collection.NewCollection[*record]()

	_, err := c.Insert(&record{ID: "a"})
	require.NoError(t, err)

	c.Freeze()
	require.True(t, c.Frozen())

	_, err = c.Insert(&record{ID: "b"})
	assert.ErrorIs(t, err, collection.ErrFrozen)
	assert.ErrorIs(t, c.Update("a", func(r *record) {}), collection.ErrFrozen)
	assert.ErrorIs(t, c.Remove("a"), collection.ErrFrozen)

	// Reads still work
	_, found := c.GetByID("a")
	assert.True(t, found)
}

package collection

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned by every mutating operation once a collection has
// been frozen by a validated model.
var ErrFrozen = errors.New("collection is frozen")

type DuplicateIdentifierError struct {
	Identifier string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("identifier %s already exists", e.Identifier)
}

type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("identifier %s does not exist", e.Identifier)
}

package model

import (
	"fmt"

	"github.com/travigo/transmodel/pkg/ctm"
)

// IntegrityViolation is one dangling foreign key found during validation.
type IntegrityViolation struct {
	Kind       ctm.Kind
	Identifier string
	Field      string
	Target     ctm.Kind
	TargetID   string
}

func (v IntegrityViolation) String() string {
	if v.TargetID == "" {
		return fmt.Sprintf("%s %s field %s is required but empty", v.Kind, v.Identifier, v.Field)
	}

	return fmt.Sprintf("%s %s field %s references missing %s %s", v.Kind, v.Identifier, v.Field, v.Target, v.TargetID)
}

// Validate walks every foreign-key field of every record and returns every
// violation found. It never stops at the first problem so callers can report
// a complete diagnostic in one pass. An empty result means the collections
// satisfy referential closure.
func (c *Collections) Validate() []IntegrityViolation {
	var violations []IntegrityViolation

	for _, reference := range c.References() {
		if reference.TargetID != "" && c.Contains(reference.Target, reference.TargetID) {
			continue
		}

		violations = append(violations, IntegrityViolation(reference))
	}

	return violations
}

// ValidationError wraps the violations of a failed validation. Collections
// that fail validation are never exposed as a Model, so readers can never
// observe an inconsistent graph.
type ValidationError struct {
	Violations []IntegrityViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("model validation failed: %s", e.Violations[0])
	}

	return fmt.Sprintf("model validation failed with %d integrity violations, first: %s", len(e.Violations), e.Violations[0])
}

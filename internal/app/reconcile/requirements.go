package reconcile

import (
	"fmt"

	"pluginsync/internal/domain"
)

// RequirementSet maps plugin identifiers to minimum versions, keeping insertion order.
type RequirementSet struct {
	order      []string
	minimums   map[string]domain.Version
	duplicates []string
}

// BuildRequirements parses every spec. A malformed version aborts the whole set;
// a repeated identifier overwrites the earlier minimum and keeps its position.
func BuildRequirements(specs []domain.RequirementSpec) (RequirementSet, error) {
	return buildRequirements(specs, false)
}

// BuildRequirementsStrict is BuildRequirements but rejects repeated identifiers.
func BuildRequirementsStrict(specs []domain.RequirementSpec) (RequirementSet, error) {
	return buildRequirements(specs, true)
}

func buildRequirements(specs []domain.RequirementSpec, strict bool) (RequirementSet, error) {
	set := RequirementSet{minimums: make(map[string]domain.Version, len(specs))}
	for i, spec := range specs {
		version, err := domain.ParseVersion(spec.MinVersion)
		if err != nil {
			return RequirementSet{}, fmt.Errorf("required[%d] %s: %w", i, spec.ID, err)
		}
		if _, exists := set.minimums[spec.ID]; exists {
			if strict {
				return RequirementSet{}, domain.E(domain.CodeInvalidArgument, "build requirements",
					fmt.Sprintf("required[%d]: plugin %q listed more than once", i, spec.ID), domain.ErrDuplicateIdentifier)
			}
			set.duplicates = append(set.duplicates, spec.ID)
		} else {
			set.order = append(set.order, spec.ID)
		}
		set.minimums[spec.ID] = version
	}
	return set, nil
}

// Requirements returns the entries in insertion order.
func (s RequirementSet) Requirements() []domain.Requirement {
	out := make([]domain.Requirement, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, domain.Requirement{ID: id, MinVersion: s.minimums[id]})
	}
	return out
}

func (s RequirementSet) MinVersion(id string) (domain.Version, bool) {
	v, ok := s.minimums[id]
	return v, ok
}

// DuplicateIDs lists identifiers that were overwritten by a later entry.
func (s RequirementSet) DuplicateIDs() []string {
	return append([]string(nil), s.duplicates...)
}

func (s RequirementSet) Len() int {
	return len(s.order)
}

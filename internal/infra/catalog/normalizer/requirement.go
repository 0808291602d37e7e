package normalizer

import (
	"fmt"
	"strings"

	"pluginsync/internal/domain"
)

// ParseRequirementSpec normalizes one required entry. Version syntax is checked
// when the requirement set is built.
func ParseRequirementSpec(raw RawRequirementSpec, index int) (domain.RequirementSpec, []string) {
	var errs []string
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		errs = append(errs, fmt.Sprintf("required[%d]: id is required", index))
	}
	minVersion := strings.TrimSpace(raw.MinVersion)
	if minVersion == "" {
		errs = append(errs, fmt.Sprintf("required[%d]: minVersion is required", index))
	}
	return domain.RequirementSpec{ID: id, MinVersion: minVersion}, errs
}

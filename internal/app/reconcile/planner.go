package reconcile

import (
	"fmt"

	"pluginsync/internal/domain"
)

// Plan lists every requirement that is missing from installed or installed at
// an older version. Equal or newer installs need no action.
func Plan(requirements RequirementSet, installed map[string]string) (domain.ActionPlan, error) {
	classified, err := Classify(requirements, installed)
	if err != nil {
		return domain.ActionPlan{}, err
	}
	return PlanFrom(classified), nil
}

// PlanFrom keeps the missing and outdated entries of a classification.
func PlanFrom(classified []Classification) domain.ActionPlan {
	var plan domain.ActionPlan
	for _, entry := range classified {
		var reason domain.ActionReason
		switch entry.Status {
		case StatusMissing:
			reason = domain.ActionReasonMissing
		case StatusOutdated:
			reason = domain.ActionReasonOutdated
		default:
			continue
		}
		plan.Actions = append(plan.Actions, domain.Action{
			ID:         entry.ID,
			Reason:     reason,
			MinVersion: entry.MinVersion,
			Installed:  entry.Installed,
		})
	}
	return plan
}

// InstalledIndex converts a host snapshot into an identifier-keyed map.
func InstalledIndex(components []domain.InstalledComponent) map[string]string {
	out := make(map[string]string, len(components))
	for _, component := range components {
		out[component.ID] = component.Version
	}
	return out
}

// Status is the outcome of comparing one requirement with the host.
type Status string

const (
	StatusMissing  Status = "missing"
	StatusOutdated Status = "outdated"
	StatusCurrent  Status = "current"
	StatusNewer    Status = "newer"
)

// Classification pairs a requirement with its comparison outcome.
type Classification struct {
	ID         string
	MinVersion string
	Installed  string
	Status     Status
}

// Classify reports the status of every requirement, in insertion order.
func Classify(requirements RequirementSet, installed map[string]string) ([]Classification, error) {
	out := make([]Classification, 0, requirements.Len())
	for _, req := range requirements.Requirements() {
		entry := Classification{ID: req.ID, MinVersion: req.MinVersion.String()}
		current, ok := installed[req.ID]
		if !ok {
			entry.Status = StatusMissing
			out = append(out, entry)
			continue
		}
		entry.Installed = current
		version, err := domain.ParseVersion(current)
		if err != nil {
			return nil, fmt.Errorf("installed plugin %s: %w", req.ID, err)
		}
		switch version.Compare(req.MinVersion) {
		case domain.Older:
			entry.Status = StatusOutdated
		case domain.Newer:
			entry.Status = StatusNewer
		default:
			entry.Status = StatusCurrent
		}
		out = append(out, entry)
	}
	return out, nil
}

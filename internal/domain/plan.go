package domain

// ActionReason explains why a plugin is part of a plan.
type ActionReason string

const (
	ActionReasonMissing  ActionReason = "missing"
	ActionReasonOutdated ActionReason = "outdated"
)

// Action asks the host to ensure a plugin is present at or above MinVersion.
type Action struct {
	ID         string
	Reason     ActionReason
	MinVersion string
	Installed  string
}

// ActionPlan is the ordered list of plugins to install or upgrade.
type ActionPlan struct {
	Actions []Action
}

// IDs returns the plugin identifiers in plan order.
func (p ActionPlan) IDs() []string {
	if len(p.Actions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(p.Actions))
	for _, action := range p.Actions {
		ids = append(ids, action.ID)
	}
	return ids
}

func (p ActionPlan) IsEmpty() bool {
	return len(p.Actions) == 0
}

// Count returns the number of actions with the given reason.
func (p ActionPlan) Count(reason ActionReason) int {
	count := 0
	for _, action := range p.Actions {
		if action.Reason == reason {
			count++
		}
	}
	return count
}

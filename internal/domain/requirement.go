package domain

// RequirementSpec is a required plugin as declared in the desired state.
type RequirementSpec struct {
	ID         string
	MinVersion string
}

// Requirement is a required plugin with a parsed minimum version.
type Requirement struct {
	ID         string
	MinVersion Version
}

// InstalledComponent is a plugin the host reports as installed.
type InstalledComponent struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

package domain

// DesiredState is the parsed desired configuration of the plugin set.
type DesiredState struct {
	Proxy            *ProxyConfig
	Sources          []SourceSpec
	Required         []RequirementSpec
	DefaultSourceURL string
	StrictDuplicates bool
}

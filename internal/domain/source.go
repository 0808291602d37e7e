package domain

import "strings"

const (
	// DefaultSourceID names the update site that is always retained.
	DefaultSourceID = "default"
	// DefaultSourceURL is used when the host carries no default site.
	DefaultSourceURL = "https://updates.jenkins.io/update-center.json"
)

// Source is a named update site.
type Source struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SourceSpec is an update site declared in the desired state.
type SourceSpec struct {
	ID  string
	URL string
}

// Source converts the declared site into a host-side source.
func (s SourceSpec) Source() Source {
	return Source{ID: s.ID, URL: s.URL}
}

// IsDefault reports whether the source is the built-in default site.
func (s Source) IsDefault() bool {
	return strings.TrimSpace(s.ID) == DefaultSourceID
}

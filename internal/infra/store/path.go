package store

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const defaultStateFileName = "state.db"

// ResolveDefaultPath returns the default state database location under
// $XDG_STATE_HOME.
func ResolveDefaultPath() string {
	return filepath.Join(xdg.StateHome, "pluginsync", defaultStateFileName)
}

package app

import (
	"time"

	"pluginsync/internal/infra/host"
)

// Config selects the files and endpoints an Application works with.
type Config struct {
	ConfigPath   string
	StatePath    string
	FetchTimeout time.Duration
	MetricsAddr  string
	// Restarter runs after staged upgrades are promoted.
	Restarter host.Restarter
}

package host

import (
	"go.uber.org/zap"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/store"
)

type componentManager struct {
	store  *store.Store
	logger *zap.Logger
}

func (m *componentManager) Component(id string) (domain.InstalledComponent, bool) {
	for _, component := range m.Components() {
		if component.ID == id {
			return component, true
		}
	}
	return domain.InstalledComponent{}, false
}

func (m *componentManager) Components() []domain.InstalledComponent {
	components, err := m.store.Installed()
	if err != nil {
		m.logger.Warn("read installed plugins failed", zap.Error(err))
		return nil
	}
	return components
}

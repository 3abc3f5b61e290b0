// internal/preset/manager.go
package preset

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/metrics"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// Manager owns the lifecycle of named filter presets. A preset snapshots the
// currently *applied* filters (never the pending copy), translated into the
// backend filter shape at save time. Presets are snapshots, not live
// references: deleting one never touches the applied set it came from.
type Manager struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewManager(store Store, log logger.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "preset-manager"}),
		now:    time.Now,
	}
}

// Save snapshots the applied filter set under a user-supplied name. It fails
// without creating anything when the name is blank or no filters are applied.
func (m *Manager) Save(ctx context.Context, name string, applied models.FilterValues) (*models.FilterPreset, error) {
	if strings.TrimSpace(name) == "" {
		metrics.PresetOperations.WithLabelValues("save", "rejected").Inc()
		return nil, stderrors.NewPresetNameRequiredError()
	}

	filters := applied.ToAPI()
	if filters.IsEmpty() {
		metrics.PresetOperations.WithLabelValues("save", "rejected").Inc()
		return nil, stderrors.NewPresetEmptyFiltersError()
	}

	preset := models.FilterPreset{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Filters:   filters,
		CreatedAt: m.now().UTC(),
	}

	if err := m.store.Insert(ctx, preset); err != nil {
		metrics.PresetOperations.WithLabelValues("save", "error").Inc()
		return nil, stderrors.NewPresetStoreFailedError(err)
	}

	metrics.PresetOperations.WithLabelValues("save", "ok").Inc()
	m.logger.Info("preset saved", map[string]interface{}{
		"presetId": preset.ID,
		"name":     preset.Name,
	})
	return &preset, nil
}

// Get loads one preset by identity.
func (m *Manager) Get(ctx context.Context, id string) (*models.FilterPreset, error) {
	p, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, stderrors.NewPresetStoreFailedError(err)
	}
	if p == nil {
		return nil, stderrors.NewPresetNotFoundError(id)
	}
	return p, nil
}

// List returns all saved presets, newest first.
func (m *Manager) List(ctx context.Context) ([]models.FilterPreset, error) {
	out, err := m.store.List(ctx)
	if err != nil {
		return nil, stderrors.NewPresetStoreFailedError(err)
	}
	return out, nil
}

// Delete removes a preset by identity.
func (m *Manager) Delete(ctx context.Context, id string) error {
	found, err := m.store.Delete(ctx, id)
	if err != nil {
		metrics.PresetOperations.WithLabelValues("delete", "error").Inc()
		return stderrors.NewPresetStoreFailedError(err)
	}
	if !found {
		metrics.PresetOperations.WithLabelValues("delete", "rejected").Inc()
		return stderrors.NewPresetNotFoundError(id)
	}
	metrics.PresetOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Simplici0/moveops/internal/apperr"
	"github.com/Simplici0/moveops/internal/extras"
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/ratecard"
)

// Manager owns the current snapshot. Edits are validated and persisted before the
// new snapshot is published, so readers never observe a half-applied change.
type Manager struct {
	mu        sync.RWMutex
	snap      Snapshot
	persister Persister
	logger    *zap.Logger
}

// NewManager loads the initial snapshot from persister and validates it.
func NewManager(ctx context.Context, persister Persister, logger *zap.Logger) (*Manager, error) {
	if persister == nil {
		return nil, errors.New("store manager: persister is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	snap, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing configuration: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("loaded pricing configuration is invalid: %w", err)
	}

	return &Manager{snap: snap, persister: persister, logger: logger}, nil
}

// Snapshot returns a copy of the current configuration.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone()
}

// UpdateRateCard edits one vehicle tier of a service's rate card.
func (m *Manager) UpdateRateCard(ctx context.Context, serviceType, tierID string, patch ratecard.Patch) (Snapshot, error) {
	return m.update(ctx, "rate_card", func(s Snapshot) (Snapshot, error) {
		cards, err := s.RateCards.ApplyPatch(serviceType, tierID, patch)
		if err != nil {
			return Snapshot{}, err
		}
		s.RateCards = cards
		return s, nil
	}, zap.String("service_type", serviceType), zap.String("tier_id", tierID))
}

// UpdateExtra edits one extra service.
func (m *Manager) UpdateExtra(ctx context.Context, extraID string, patch extras.Patch) (Snapshot, error) {
	return m.update(ctx, "extras", func(s Snapshot) (Snapshot, error) {
		catalog, err := s.Extras.ApplyPatch(extraID, patch)
		if err != nil {
			return Snapshot{}, err
		}
		s.Extras = catalog
		return s, nil
	}, zap.String("extra_id", extraID))
}

// UpdateMarginPolicy edits the global margin policy.
func (m *Manager) UpdateMarginPolicy(ctx context.Context, patch margin.Patch) (Snapshot, error) {
	return m.update(ctx, "margin_policy", func(s Snapshot) (Snapshot, error) {
		policy, err := s.Margin.ApplyPatch(patch)
		if err != nil {
			return Snapshot{}, err
		}
		s.Margin = policy
		return s, nil
	})
}

func (m *Manager) update(ctx context.Context, store string, edit func(Snapshot) (Snapshot, error), fields ...zap.Field) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := m.logger.With(append(fields, zap.String("store", store))...)

	next, err := edit(m.snap.Clone())
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			logger.Warn("pricing edit rejected", zap.Error(err))
		}
		return Snapshot{}, err
	}

	if err := m.persister.Save(ctx, next); err != nil {
		logger.Error("pricing edit not persisted", zap.Error(err))
		return Snapshot{}, fmt.Errorf("persist %s: %w", store, err)
	}

	m.snap = next
	logger.Info("pricing edit applied")
	return next.Clone(), nil
}

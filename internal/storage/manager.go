// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: ledgerdb and historyfs.
package storage

import (
	"fmt"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/storage/historyfs"
	"github.com/lakmalw/cense/internal/storage/ledgerdb"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	ledger  *ledgerdb.Store
	history *historyfs.Store
	logger  *common.Logger
}

// NewManager creates a new StorageManager with the 2 storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ledgerStore, err := ledgerdb.NewStore(logger, config.Storage.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger store: %w", err)
	}

	historyStore, err := historyfs.NewStore(logger, config.Storage.History.Path)
	if err != nil {
		ledgerStore.Close()
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	logger.Info().
		Str("ledger", config.Storage.Ledger.Path).
		Str("history", config.Storage.History.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		ledger:  ledgerStore,
		history: historyStore,
		logger:  logger,
	}, nil
}

func (m *Manager) LedgerStore() interfaces.LedgerStore {
	return m.ledger
}

func (m *Manager) HistoryStore() interfaces.HistoryStore {
	return m.history
}

func (m *Manager) Close() error {
	return m.ledger.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)

// Package historyfs implements HistoryStore as a single JSON document on
// disk. Loads that fail for any reason fall back to an empty history so a
// corrupt file never blocks the dashboard.
package historyfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

const historyFile = "portfolio_history.json"

// Store provides file-based JSON storage for the snapshot history.
type Store struct {
	path   string
	logger *common.Logger
}

// NewStore creates the history store rooted at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history path %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("HistoryFS store opened")
	return &Store{path: path, logger: logger}, nil
}

func (s *Store) filePath() string {
	return filepath.Join(s.path, historyFile)
}

// LoadHistory reads the snapshot history. Missing or unparseable files
// return an empty list.
func (s *Store) LoadHistory() []models.PortfolioSnapshot {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		return []models.PortfolioSnapshot{}
	}
	var snapshots []models.PortfolioSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to parse portfolio history, starting fresh")
		return []models.PortfolioSnapshot{}
	}
	return snapshots
}

// SaveHistory writes the snapshot history atomically.
func (s *Store) SaveHistory(snapshots []models.PortfolioSnapshot) error {
	if snapshots == nil {
		snapshots = []models.PortfolioSnapshot{}
	}
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

var _ interfaces.HistoryStore = (*Store)(nil)

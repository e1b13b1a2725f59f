// Package watchlist provides watchlist management services
package watchlist

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService
type Service struct {
	mu      sync.Mutex
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new watchlist service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetWatchlist returns all tracked stocks
func (s *Service) GetWatchlist(ctx context.Context) ([]models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.storage.LedgerStore().GetWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return items, nil
}

// AddItem adds a stock to the watchlist
func (s *Service) AddItem(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(item.Symbol) == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrValidation)
	}
	item.ID = uuid.New().String()
	item.Symbol = strings.ToUpper(strings.TrimSpace(item.Symbol))

	items, err := s.storage.LedgerStore().GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range items {
		if existing.Symbol == item.Symbol {
			return nil, fmt.Errorf("%w: %s is already on the watchlist", models.ErrValidation, item.Symbol)
		}
	}
	items = append(items, item)

	if err := s.storage.LedgerStore().SaveWatchlist(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Info().Str("symbol", item.Symbol).Msg("Watchlist item added")
	return &item, nil
}

// UpdateItem replaces a watchlist entry by ID
func (s *Service) UpdateItem(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(item.Symbol) == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrValidation)
	}

	items, err := s.storage.LedgerStore().GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == item.ID {
			item.Symbol = strings.ToUpper(strings.TrimSpace(item.Symbol))
			items[i] = item
			if err := s.storage.LedgerStore().SaveWatchlist(ctx, items); err != nil {
				return nil, fmt.Errorf("failed to save watchlist: %w", err)
			}
			return &item, nil
		}
	}
	return nil, fmt.Errorf("%w: watchlist item %s", models.ErrNotFound, item.ID)
}

// RemoveItem deletes a watchlist entry
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.storage.LedgerStore().GetWatchlist(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := s.storage.LedgerStore().SaveWatchlist(ctx, items); err != nil {
				return fmt.Errorf("failed to save watchlist: %w", err)
			}
			s.logger.Info().Str("id", id).Msg("Watchlist item removed")
			return nil
		}
	}
	return fmt.Errorf("%w: watchlist item %s", models.ErrNotFound, id)
}

// Summary renders a compact text description for advisor prompts
func (s *Service) Summary(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.storage.LedgerStore().GetWatchlist(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "Watchlist: empty\n", nil
	}

	var b strings.Builder
	b.WriteString("Watchlist:\n")
	for _, item := range items {
		if item.CompanyName != "" {
			fmt.Fprintf(&b, "- %s (%s)", item.Symbol, item.CompanyName)
		} else {
			fmt.Fprintf(&b, "- %s", item.Symbol)
		}
		if item.Notes != "" {
			fmt.Fprintf(&b, ": %s", item.Notes)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

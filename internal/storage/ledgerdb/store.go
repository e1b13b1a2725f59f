// Package ledgerdb implements LedgerStore using BadgerHold.
// Each ledger subject (investments, transactions, cash, dividends, watchlist)
// is stored as a single JSON-encoded record so every save replaces the
// subject's state wholesale.
package ledgerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

// Subject keys for ledger records.
const (
	subjectInvestments  = "investments"
	subjectTransactions = "transactions"
	subjectCash         = "cash"
	subjectDividends    = "dividends"
	subjectWatchlist    = "watchlist"
)

// LedgerRecord is the generic persisted envelope for one ledger subject.
type LedgerRecord struct {
	Subject  string `badgerhold:"key"`
	Data     []byte
	Version  int64
	DateTime time.Time
}

// Store implements interfaces.LedgerStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) the ledger database at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledgerdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledgerdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("LedgerDB opened")
	return &Store{db: db, logger: logger}, nil
}

// get unmarshals the record for subject into v. Returns false when the
// subject has never been saved.
func (s *Store) get(subject string, v interface{}) (bool, error) {
	var rec LedgerRecord
	if err := s.db.Get(subject, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", subject, err)
	}
	if err := json.Unmarshal(rec.Data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", subject, err)
	}
	return true, nil
}

// put replaces the record for subject with the JSON encoding of v.
func (s *Store) put(subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", subject, err)
	}

	rec := LedgerRecord{Subject: subject, Data: data, DateTime: time.Now()}
	var existing LedgerRecord
	if err := s.db.Get(subject, &existing); err == nil {
		rec.Version = existing.Version + 1
	} else {
		rec.Version = 1
	}

	if err := s.db.Upsert(subject, &rec); err != nil {
		return fmt.Errorf("failed to put %s: %w", subject, err)
	}
	return nil
}

// txPut replaces the record for subject inside an open transaction.
func (s *Store) txPut(txn *badger.Txn, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", subject, err)
	}

	rec := LedgerRecord{Subject: subject, Data: data, DateTime: time.Now()}
	var existing LedgerRecord
	if err := s.db.TxGet(txn, subject, &existing); err == nil {
		rec.Version = existing.Version + 1
	} else {
		rec.Version = 1
	}

	if err := s.db.TxUpsert(txn, subject, &rec); err != nil {
		return fmt.Errorf("failed to put %s: %w", subject, err)
	}
	return nil
}

// SaveTrade writes the investments, cash, and transactions subjects in one
// Badger transaction. Either all three commit or none do.
func (s *Store) SaveTrade(_ context.Context, investments []models.Investment, balance float64, transactions []models.Transaction) error {
	if investments == nil {
		investments = []models.Investment{}
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return s.db.Badger().Update(func(txn *badger.Txn) error {
		if err := s.txPut(txn, subjectInvestments, investments); err != nil {
			return err
		}
		if err := s.txPut(txn, subjectCash, balance); err != nil {
			return err
		}
		return s.txPut(txn, subjectTransactions, transactions)
	})
}

func (s *Store) GetInvestments(_ context.Context) ([]models.Investment, error) {
	var investments []models.Investment
	if _, err := s.get(subjectInvestments, &investments); err != nil {
		return nil, err
	}
	return investments, nil
}

func (s *Store) SaveInvestments(_ context.Context, investments []models.Investment) error {
	if investments == nil {
		investments = []models.Investment{}
	}
	return s.put(subjectInvestments, investments)
}

func (s *Store) GetTransactions(_ context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if _, err := s.get(subjectTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *Store) SaveTransactions(_ context.Context, transactions []models.Transaction) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return s.put(subjectTransactions, transactions)
}

// GetCashBalance returns the stored balance and whether one has been saved.
// A fresh database reports false so the caller can seed the opening balance.
func (s *Store) GetCashBalance(_ context.Context) (float64, bool, error) {
	var balance float64
	found, err := s.get(subjectCash, &balance)
	if err != nil {
		return 0, false, err
	}
	return balance, found, nil
}

func (s *Store) SaveCashBalance(_ context.Context, balance float64) error {
	return s.put(subjectCash, balance)
}

func (s *Store) GetDividends(_ context.Context) ([]models.LoggedDividend, error) {
	var dividends []models.LoggedDividend
	if _, err := s.get(subjectDividends, &dividends); err != nil {
		return nil, err
	}
	return dividends, nil
}

func (s *Store) SaveDividends(_ context.Context, dividends []models.LoggedDividend) error {
	if dividends == nil {
		dividends = []models.LoggedDividend{}
	}
	return s.put(subjectDividends, dividends)
}

func (s *Store) GetWatchlist(_ context.Context) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if _, err := s.get(subjectWatchlist, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SaveWatchlist(_ context.Context, items []models.WatchlistItem) error {
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return s.put(subjectWatchlist, items)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ interfaces.LedgerStore = (*Store)(nil)

// Package transactions persists the append-only trade ledger in a WAL.
package transactions

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/smartinvest/server/internal/domain"
)

const (
	segmentLimit = 1000
	maxSegments  = 100

	txKeyPrefix = "tx_"
)

// WALStore is the append-only transaction ledger. Records are written to a
// WAL for durability and kept in memory in insertion order for reads;
// nothing is ever updated or deleted.
type WALStore struct {
	wal    *gowal.Wal
	mu     sync.RWMutex
	byUser map[string][]domain.Transaction
}

// NewWALStore opens the ledger WAL under dir and replays it into memory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		return nil, errors.New("ledger dir is required")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "ledger_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init ledger WAL")
	}

	store := &WALStore{
		wal:    wal,
		byUser: make(map[string][]domain.Transaction),
	}

	for msg := range wal.Iterator() {
		if !strings.HasPrefix(msg.Key, txKeyPrefix) {
			continue
		}
		var tx domain.Transaction
		if err := json.Unmarshal(msg.Value, &tx); err != nil {
			return nil, errors.Wrapf(err, "decode ledger record %s", msg.Key)
		}
		store.byUser[tx.Username] = append(store.byUser[tx.Username], tx)
	}

	return store, nil
}

// Append writes one trade record and returns it with its ledger sequence
// number assigned. The sequence is the WAL index, so insertion order is
// recoverable even when execution timestamps collide.
func (s *WALStore) Append(tx domain.Transaction) (domain.Transaction, error) {
	if s == nil || s.wal == nil {
		return domain.Transaction{}, errors.New("ledger store is not initialized")
	}
	if tx.ID == "" || tx.Username == "" {
		return domain.Transaction{}, errors.New("ledger record requires id and username")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx.Seq = s.wal.CurrentIndex() + 1

	payload, err := json.Marshal(tx)
	if err != nil {
		return domain.Transaction{}, errors.Wrap(err, "marshal ledger record")
	}

	key := fmt.Sprintf("%s%s", txKeyPrefix, tx.ID)
	if err := s.wal.Write(tx.Seq, key, payload); err != nil {
		return domain.Transaction{}, errors.Wrap(err, "append ledger record")
	}

	s.byUser[tx.Username] = append(s.byUser[tx.Username], tx)
	return tx, nil
}

// ByUser returns all transactions recorded for the user in insertion order.
// The returned slice is a copy; callers may not mutate ledger state.
func (s *WALStore) ByUser(username string) ([]domain.Transaction, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("ledger store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byUser[username]
	out := make([]domain.Transaction, len(records))
	copy(out, records)
	return out, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("ledger store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}

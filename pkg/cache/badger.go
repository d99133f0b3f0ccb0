package cache

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/annolab/curator/pkg/lifecycle"
)

// System couples a Store with lifecycle coordination.
type System interface {
	Store
	// Start registers a shutdown hook that closes the cache database.
	Start(lc *lifecycle.Coordinator) error
}

type badgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens a badger-backed cache at the configured path.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &badgerStore{
		db:     db,
		logger: logger.With("system", "cache"),
	}, nil
}

func (b *badgerStore) Start(lc *lifecycle.Coordinator) error {
	b.logger.Info("cache ready")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		b.logger.Info("closing cache")

		if err := b.db.Close(); err != nil {
			b.logger.Error("cache close failed", "error", err)
		}
	})

	return nil
}

func (b *badgerStore) Get(ns Namespace, model, input string) ([]byte, bool, error) {
	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(buildKey(ns, model, input))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	return value, true, nil
}

func (b *badgerStore) Put(ns Namespace, model, input string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(buildKey(ns, model, input), value)
	})
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

func (b *badgerStore) Contains(ns Namespace, model, input string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(buildKey(ns, model, input))
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache contains: %w", err)
	}

	return true, nil
}

func (b *badgerStore) Close() error {
	return b.db.Close()
}

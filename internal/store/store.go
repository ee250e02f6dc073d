// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vrcxtracker/internal/logging"
)

// Key prefixes
const (
	mappingKeyPrefix = "msg:"
	metaKeyPrefix    = "meta:"
)

var (
	// ErrNotFound is returned when no message is recorded for a join id.
	ErrNotFound = errors.New("message mapping not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("message store is closed")

	// ErrInvalidMapping is returned by Put for a mapping without a message id.
	ErrInvalidMapping = errors.New("mapping requires a message id")
)

// Mapping ties one visit to the Discord message that reports it.
type Mapping struct {
	JoinID    int64     `json:"join_id"`
	MessageID string    `json:"message_id"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Options configures Open.
type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// GCRatio is the value log discard ratio used by RunGC.
	GCRatio float64
}

// MessageStore persists the join id to message id mapping in BadgerDB.
type MessageStore struct {
	db      *badger.DB
	gcRatio float64

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store.
func Open(opts Options) (*MessageStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("store path is required unless in_memory is set")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	ratio := opts.GCRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &MessageStore{db: db, gcRatio: ratio}, nil
}

func mappingKey(joinID int64) []byte {
	return []byte(mappingKeyPrefix + strconv.FormatInt(joinID, 10))
}

func (s *MessageStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Get returns the mapping for joinID or ErrNotFound.
func (s *MessageStore) Get(ctx context.Context, joinID int64) (Mapping, error) {
	var m Mapping
	if err := s.checkOpen(); err != nil {
		return m, err
	}
	if err := ctx.Err(); err != nil {
		return m, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(mappingKey(joinID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get mapping: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	return m, err
}

// Put stores m, keeping the original CreatedAt when the join id is already
// mapped.
func (s *MessageStore) Put(ctx context.Context, m Mapping) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.MessageID == "" {
		return ErrInvalidMapping
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := mappingKey(m.JoinID)
		now := time.Now().UTC()
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}
		if item, err := txn.Get(key); err == nil {
			var prev Mapping
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &prev) }); err == nil && !prev.CreatedAt.IsZero() {
				m.CreatedAt = prev.CreatedAt
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read existing mapping: %w", err)
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = m.UpdatedAt
		}

		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set mapping: %w", err)
		}
		return nil
	})
}

// Delete removes the mapping for joinID. Deleting a missing key is not an
// error.
func (s *MessageStore) Delete(ctx context.Context, joinID int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(mappingKey(joinID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete mapping: %w", err)
		}
		return nil
	})
}

// List returns every mapping in key order.
func (s *MessageStore) List(ctx context.Context) ([]Mapping, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var out []Mapping
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(mappingKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var m Mapping
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return fmt.Errorf("decode mapping %s: %w", it.Item().Key(), err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored mappings.
func (s *MessageStore) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(mappingKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return ctx.Err()
	})
	return n, err
}

// RunGC reclaims value log space until badger reports nothing to rewrite.
func (s *MessageStore) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// Close closes the database. Further calls return ErrClosed.
func (s *MessageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Closing message store")
		return fmt.Errorf("close badger db: %w", err)
	}
	return nil
}

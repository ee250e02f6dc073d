// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vrcxtracker/internal/logging"
)

const legacyImportedKey = metaKeyPrefix + "legacy_imported"

// ImportLegacyJSON loads a discord-messages.json file, a JSON object mapping
// decimal join ids to numeric message ids. The import runs once per store:
// later calls return 0 without reading the file. Existing mappings win over
// legacy entries. A missing file is not an error.
func (s *MessageStore) ImportLegacyJSON(ctx context.Context, path string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if path == "" {
		return 0, nil
	}

	done, err := s.legacyImported()
	if err != nil {
		return 0, err
	}
	if done {
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read legacy mapping file: %w", err)
	}

	var pairs map[string]uint64
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return 0, fmt.Errorf("decode legacy mapping file: %w", err)
	}

	imported := 0
	now := time.Now().UTC()
	for joinKey, messageID := range pairs {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		joinID, err := strconv.ParseInt(joinKey, 10, 64)
		if err != nil || messageID == 0 {
			logging.Warn().Str("join_id", joinKey).Msg("Skipping malformed legacy mapping")
			continue
		}
		if _, err := s.Get(ctx, joinID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return imported, err
		}
		m := Mapping{
			JoinID:    joinID,
			MessageID: strconv.FormatUint(messageID, 10),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.Put(ctx, m); err != nil {
			return imported, fmt.Errorf("import join %d: %w", joinID, err)
		}
		imported++
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(legacyImportedKey), []byte(now.Format(time.RFC3339)))
	}); err != nil {
		return imported, fmt.Errorf("mark legacy import: %w", err)
	}

	logging.Info().Str("path", path).Int("imported", imported).Msg("Imported legacy message mappings")
	return imported, nil
}

func (s *MessageStore) legacyImported() (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(legacyImportedKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read legacy import marker: %w", err)
	}
	return found, nil
}

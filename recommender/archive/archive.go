// Package archive persists completed recommendation responses so past
// sessions can be inspected later. Archival is strictly best-effort: a
// storage failure is logged and never propagates to the caller's response.
package archive

import (
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/revo-off/Vibeyf-ai/recommender/engine"
	"github.com/revo-off/Vibeyf-ai/recommender/genai"
	"github.com/revo-off/Vibeyf-ai/recommender/profile"
)

const keyPrefix = "response/"

// Record is one archived recommendation session.
type Record struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	UserText  string        `json:"userText"`
	Profile   profile.Raw   `json:"profile"`
	Bundle    engine.Bundle `json:"bundle"`
	Report    genai.Report  `json:"report"`
}

// Store archives recommendation responses in a badger store.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (or creates) the archive store at path.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive at %s: %w", path, err)
	}
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "archive").Logger(),
	}, nil
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives one response and returns the record ID.
func (s *Store) Save(record Record) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode archive record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+record.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("write archive record: %w", err)
	}

	s.logger.Debug().Str("id", record.ID).Msg("response archived")
	return record.ID, nil
}

// Get loads one archived record by ID.
func (s *Store) Get(id string) (Record, error) {
	var record Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return Record{}, fmt.Errorf("load archive record %s: %w", id, err)
	}
	return record, nil
}

// List returns every archived record, newest first.
func (s *Store) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list archive records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

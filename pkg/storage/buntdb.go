package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
	"github.com/tidwall/buntdb"
)

// TimestampIndex orders runs by their history timestamp
const TimestampIndex = "timestamp_index"

const keyPrefix = "run:"

// BuntStorage implements RunStorage using BuntDB
type BuntStorage struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (RunStorage, error) {
	return FromFile(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (RunStorage, error) {
	store, err := NewBuntStorage(file)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.CreateIndex(TimestampIndex, keyPrefix+"*", buntdb.IndexJSON("timestamp")); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BuntStorage{db: db}, nil
}

// ReplaceRuns implements RunStorage
func (b *BuntStorage) ReplaceRuns(runs []report.HistoryRun) error {
	records := lo.Map(runs, toRecord)

	return b.db.Update(func(tx *buntdb.Tx) error {
		if err := tx.DeleteAll(); err != nil {
			return fmt.Errorf("failed to clear runs: %w", err)
		}

		for _, record := range records {
			content, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("failed to marshal run: %w", err)
			}

			if _, _, err := tx.Set(keyPrefix+record.ID, string(content), nil); err != nil {
				return fmt.Errorf("failed to store run: %w", err)
			}
		}

		return nil
	})
}

// Runs implements RunStorage
func (b *BuntStorage) Runs() ([]report.HistoryRun, error) {
	runs := make([]report.HistoryRun, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.Descend(TimestampIndex, func(_, value string) bool {
			var record runRecord
			if decodeErr = json.Unmarshal([]byte(value), &record); decodeErr != nil {
				return false
			}
			runs = append(runs, record.run())
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over runs: %w", err)
		}
		return decodeErr
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Run implements RunStorage
func (b *BuntStorage) Run(id string) (report.HistoryRun, error) {
	var record runRecord

	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(keyPrefix + id)
		if errors.Is(err, buntdb.ErrNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(value), &record)
	})
	if err != nil {
		return report.HistoryRun{}, err
	}

	return record.run(), nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/raykavin/reportview/pkg/report"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLStorage implements RunStorage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// Config holds the configuration for SQL database connections
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a default configuration for SQL connections
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// FromSQLite creates a SQLite backed storage
func FromSQLite(path string, opts ...gorm.Option) (RunStorage, error) {
	return FromSQL(sqlite.Open(path), opts...)
}

// FromSQL creates a SQL storage over any GORM dialect
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (RunStorage, error) {
	store, err := NewSQLStorage(dialect, DefaultConfig(), opts...)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewSQLStorage opens the database and migrates the run table
func NewSQLStorage(dialect gorm.Dialector, config Config, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err = db.AutoMigrate(&runRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// ReplaceRuns implements RunStorage
func (s *SQLStorage) ReplaceRuns(runs []report.HistoryRun) error {
	records := lo.Map(runs, toRecord)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&runRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear runs: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to store runs: %w", err)
		}
		return nil
	})
}

// Runs implements RunStorage
func (s *SQLStorage) Runs() ([]report.HistoryRun, error) {
	var records []runRecord
	if err := s.db.Order("timestamp desc").Order("id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	return lo.Map(records, func(r runRecord, _ int) report.HistoryRun { return r.run() }), nil
}

// Run implements RunStorage
func (s *SQLStorage) Run(id string) (report.HistoryRun, error) {
	var record runRecord

	err := s.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return report.HistoryRun{}, ErrRunNotFound
	}
	if err != nil {
		return report.HistoryRun{}, fmt.Errorf("failed to fetch run: %w", err)
	}

	return record.run(), nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

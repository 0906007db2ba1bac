package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voicelock-go/internal/platform/storage"
)

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite builds a database-backed authorization table. Seed codes are
// inserted only when absent so admin edits survive restarts.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	s := &sqliteStore{db: db}
	for code, username := range cfg.Seed {
		record := storage.TokenCodeRecord{Code: code, Username: username}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&record).Error
		if err != nil {
			return nil, fmt.Errorf("seeding code table: %w", err)
		}
	}
	return s, nil
}

func (s *sqliteStore) Lookup(ctx context.Context, code string) (string, error) {
	var record storage.TokenCodeRecord
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return record.Username, nil
}

func (s *sqliteStore) Put(ctx context.Context, code, username string) error {
	if code == "" {
		return fmt.Errorf("code required")
	}
	if username == "" {
		return fmt.Errorf("username required")
	}
	record := storage.TokenCodeRecord{Code: code, Username: username}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&record).Error
}

func (s *sqliteStore) Remove(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Where("code = ?", code).Delete(&storage.TokenCodeRecord{}).Error
}

func (s *sqliteStore) List(ctx context.Context) (map[string]string, error) {
	var records []storage.TokenCodeRecord
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(records))
	for _, r := range records {
		out[r.Code] = r.Username
	}
	return out, nil
}

func (s *sqliteStore) Stats(ctx context.Context) (map[string]any, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&storage.TokenCodeRecord{}).Count(&total).Error; err != nil {
		return nil, err
	}
	return map[string]any{
		"type":  "sqlite",
		"total": total,
	}, nil
}

func (s *sqliteStore) Close(context.Context) error {
	return nil
}

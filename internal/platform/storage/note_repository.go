package storage

import (
	"context"

	"gorm.io/gorm"

	"voicelock-go/internal/platform/errors"
)

// NoteRepository persists and lists spoken notes.
type NoteRepository interface {
	Append(ctx context.Context, username, text string) error
	ListByUser(ctx context.Context, username string, limit int) ([]NoteRecord, error)
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Append(ctx context.Context, username, text string) error {
	record := &NoteRecord{Username: username, Text: text}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "note.append", "failed to save note", err)
	}
	return nil
}

func (r *noteRepository) ListByUser(ctx context.Context, username string, limit int) ([]NoteRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var notes []NoteRecord
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "note.list", "failed to list notes", err)
	}
	return notes, nil
}

package storage

import (
	"context"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voicelock-go/internal/platform/errors"
)

// AuthEventRepository records authentication related events for auditing.
type AuthEventRepository interface {
	Record(ctx context.Context, attemptID, event, username string, metadata map[string]any) error
	ListRecent(ctx context.Context, limit int) ([]AuthEventRecord, error)
}

type authEventRepository struct {
	db *gorm.DB
}

func NewAuthEventRepository(db *gorm.DB) AuthEventRepository {
	return &authEventRepository{db: db}
}

func (r *authEventRepository) Record(ctx context.Context, attemptID, event, username string, metadata map[string]any) error {
	record := &AuthEventRecord{
		AttemptID: attemptID,
		Event:     event,
		Username:  username,
	}
	if len(metadata) > 0 {
		raw, err := sonic.Marshal(metadata)
		if err != nil {
			return errors.Wrap(errors.KindStorage, "auth_event.marshal",
				"failed to encode event metadata", err)
		}
		record.Metadata = datatypes.JSON(raw)
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "auth_event.record",
			"failed to save auth event", err)
	}
	return nil
}

func (r *authEventRepository) ListRecent(ctx context.Context, limit int) ([]AuthEventRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []AuthEventRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "auth_event.list",
			"failed to list auth events", err)
	}
	return events, nil
}

package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	platformerrors "voicelock-go/internal/platform/errors"
)

// Open connects to the sqlite database and runs pending migrations.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "storage.open",
			"failed to open database", err)
	}

	manager := NewMigrationManager(db)
	manager.AddMigration(initialSchema{})
	if err := manager.RunMigrations(); err != nil {
		return nil, err
	}
	return db, nil
}

// initialSchema creates the note, auth event and token code tables.
type initialSchema struct{}

func (initialSchema) Version() string     { return "202501_initial" }
func (initialSchema) Description() string { return "notes, auth events, token codes" }

func (initialSchema) Up(db *gorm.DB) error {
	return db.AutoMigrate(&NoteRecord{}, &AuthEventRecord{}, &TokenCodeRecord{})
}

func (initialSchema) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&NoteRecord{}, &AuthEventRecord{}, &TokenCodeRecord{})
}

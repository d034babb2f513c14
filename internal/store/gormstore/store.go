// Package gormstore persists users, signals and signal-order links in SQLite
// via gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finboard/internal/broker"
	"finboard/internal/signal"
	"finboard/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (and migrates) the database at path.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	models := []interface{}{
		&model.UserModel{},
		&model.SignalModel{},
		&model.SignalLinkModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: a little read parallelism for concurrent HTTP requests
	// while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ broker.CredentialSource = (*GormStore)(nil)
	_ signal.Store            = (*GormStore)(nil)
)

// UserCredentials loads a user's stored broker credentials. An unknown user
// yields an empty record, which the resolver reports as missing credentials;
// the distinction does not matter to callers.
func (s *GormStore) UserCredentials(ctx context.Context, userID string) (broker.UserCredentials, error) {
	var user model.UserModel
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return broker.UserCredentials{}, nil
	}
	if err != nil {
		return broker.UserCredentials{}, err
	}
	return broker.UserCredentials{
		Environment:       user.OandaEnvironment,
		PracticeAccountID: user.PracticeAccountID,
		PracticeAPIToken:  user.PracticeAPIToken,
		LiveAccountID:     user.LiveAccountID,
		LiveAPIToken:      user.LiveAPIToken,
	}, nil
}

// UserByUsername resolves a login name to the user id.
func (s *GormStore) UserByUsername(ctx context.Context, username string) (string, bool, error) {
	var user model.UserModel
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.ID, true, nil
}

// UpsertUser creates or replaces a user row.
func (s *GormStore) UpsertUser(ctx context.Context, user model.UserModel) error {
	now := time.Now().Unix()
	if user.CreatedAtUnix == 0 {
		user.CreatedAtUnix = now
	}
	user.UpdatedAtUnix = now
	return s.db.WithContext(ctx).Save(&user).Error
}

// SaveCredentials updates a user's broker credential pair. Ownership filtered
// and last-write-wins.
func (s *GormStore) SaveCredentials(ctx context.Context, userID string, creds broker.UserCredentials) error {
	res := s.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"oanda_environment":   creds.Environment,
			"practice_account_id": creds.PracticeAccountID,
			"practice_api_token":  creds.PracticeAPIToken,
			"live_account_id":     creds.LiveAccountID,
			"live_api_token":      creds.LiveAPIToken,
			"updated_at":          time.Now().Unix(),
		})
	return res.Error
}

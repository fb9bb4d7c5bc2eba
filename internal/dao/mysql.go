package dao

import (
	"context"
	"errors"
	"fmt"

	"tagarena/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type MySQLStore struct {
	db *gorm.DB
}

func OpenMySQL(dsn string) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}
	return NewMySQLStore(db)
}

// NewMySQLStore migrates the progress table on db.
func NewMySQLStore(db *gorm.DB) (*MySQLStore, error) {
	if err := db.AutoMigrate(&model.Progress{}); err != nil {
		return nil, fmt.Errorf("migrate progress: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) GetUser(ctx context.Context, key string) (Progression, error) {
	var row model.Progress
	err := s.db.WithContext(ctx).Where("profile_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultProgression(), nil
	}
	if err != nil {
		return DefaultProgression(), fmt.Errorf("load user %s: %w", key, err)
	}
	inv, err := decodeInventory(row.Inventory)
	if err != nil {
		return DefaultProgression(), err
	}
	return Progression{Coins: row.Coins, Inventory: inv}, nil
}

func (s *MySQLStore) SaveUser(ctx context.Context, key string, p Progression) error {
	inv, err := encodeInventory(p.Inventory)
	if err != nil {
		return err
	}
	row := model.Progress{ProfileKey: key, Coins: p.Coins, Inventory: inv}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"coins", "inventory", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save user %s: %w", key, err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

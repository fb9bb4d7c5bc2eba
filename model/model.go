package model

import "gorm.io/gorm"

// Progress is the mysql row behind a player's durable progression.
type Progress struct {
	gorm.Model
	ProfileKey string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Coins      int    `gorm:"not null;default:0"`
	Inventory  string `gorm:"type:text;not null"` // json array of item ids
}

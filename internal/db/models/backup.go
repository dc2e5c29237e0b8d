package models

import "time"

// Backup triggers.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// DatabaseBackup records one dump artifact on disk.
type DatabaseBackup struct {
	ID         uint64    `gorm:"primaryKey"         json:"id"`
	FileName   string    `gorm:"size:255;index"     json:"fileName"`
	FilePath   string    `gorm:"size:1024"          json:"filePath"`
	FileSize   int64     `json:"fileSize"`
	Compressed bool      `json:"compressed"`
	Trigger    string    `gorm:"size:16"            json:"trigger"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

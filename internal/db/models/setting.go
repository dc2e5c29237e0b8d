// Package models contains database model definitions.
package models

// Setting is a named JSON document, used for settings without a table of their own.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;size:191"`
	Value []byte
}

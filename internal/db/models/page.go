package models

import (
	"time"

	"gorm.io/datatypes"
)

// Page statuses.
const (
	PageActive   = "active"
	PageInactive = "inactive"
)

// DynamicPage is a CMS page addressed by its slug. Deleted marks a page as
// trashed, it can be restored until it is removed permanently.
type DynamicPage struct {
	ID                 uint64                      `gorm:"primaryKey"           json:"id"`
	Name               string                      `gorm:"size:255;not null"    json:"name"`
	Slug               string                      `gorm:"uniqueIndex;size:191" json:"slug"`
	Description        string                      `gorm:"type:text"            json:"description"`
	Content            string                      `gorm:"type:text"            json:"content"`
	Status             string                      `gorm:"size:16;index"        json:"status"`
	Deleted            bool                        `gorm:"index"                json:"deleted"`
	MetaTitle          string                      `gorm:"size:255"             json:"metaTitle"`
	MetaDescription    string                      `gorm:"size:500"             json:"metaDescription"`
	MetaKeywords       datatypes.JSONSlice[string] `json:"metaKeywords"`
	CanonicalURL       string                      `gorm:"size:500"             json:"canonicalUrl"`
	OgTitle            string                      `gorm:"size:255"             json:"ogTitle"`
	OgDescription      string                      `gorm:"size:500"             json:"ogDescription"`
	OgImage            string                      `gorm:"size:500"             json:"ogImage"`
	TwitterTitle       string                      `gorm:"size:255"             json:"twitterTitle"`
	TwitterDescription string                      `gorm:"size:500"             json:"twitterDescription"`
	TwitterImage       string                      `gorm:"size:500"             json:"twitterImage"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

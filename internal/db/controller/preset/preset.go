// Package preset holds the theme presets stored as settings documents.
package preset

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/controller/setting"
)

const (
	// SettingKeyColorConfig is the key used to store the storefront colors.
	SettingKeyColorConfig = "color_config"
	// SettingKeyVersionConfig is the key used to store the selected page layouts.
	SettingKeyVersionConfig = "version_config"
)

type (
	// ColorConfig is the storefront color palette.
	ColorConfig struct {
		PrimaryColor    string `form:"primaryColor"    json:"primaryColor"    validate:"required,hexcolor"`
		SecondaryColor  string `form:"secondaryColor"  json:"secondaryColor"  validate:"required,hexcolor"`
		AccentColor     string `form:"accentColor"     json:"accentColor"     validate:"required,hexcolor"`
		BackgroundColor string `form:"backgroundColor" json:"backgroundColor" validate:"required,hexcolor"`
		TextColor       string `form:"textColor"       json:"textColor"       validate:"required,hexcolor"`
	}

	// VersionConfig selects the layout variant of each storefront page.
	VersionConfig struct {
		HomePage     string `form:"homePage"     json:"homePage"     validate:"required,oneof=v1 v2 v3"`
		ProductPage  string `form:"productPage"  json:"productPage"  validate:"required,oneof=v1 v2 v3"`
		CategoryPage string `form:"categoryPage" json:"categoryPage" validate:"required,oneof=v1 v2 v3"`
		CheckoutPage string `form:"checkoutPage" json:"checkoutPage" validate:"required,oneof=v1 v2"`
	}
)

// DefaultColorConfig is returned until an admin saves a palette.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		PrimaryColor:    "#4C924D",
		SecondaryColor:  "#1F2937",
		AccentColor:     "#F59E0B",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#111827",
	}
}

// DefaultVersionConfig is returned until an admin picks layouts.
func DefaultVersionConfig() VersionConfig {
	return VersionConfig{
		HomePage:     "v1",
		ProductPage:  "v1",
		CategoryPage: "v1",
		CheckoutPage: "v1",
	}
}

// Load loads the color config, creating the default document when missing.
func (p *ColorConfig) Load(db *gorm.DB) error {
	return loadOrCreate(db, SettingKeyColorConfig, p, DefaultColorConfig())
}

// Save saves the color config.
func (p *ColorConfig) Save(db *gorm.DB) error {
	return setting.SaveJSON(db, SettingKeyColorConfig, p)
}

// Load loads the version config, creating the default document when missing.
func (p *VersionConfig) Load(db *gorm.DB) error {
	return loadOrCreate(db, SettingKeyVersionConfig, p, DefaultVersionConfig())
}

// Save saves the version config.
func (p *VersionConfig) Save(db *gorm.DB) error {
	return setting.SaveJSON(db, SettingKeyVersionConfig, p)
}

func loadOrCreate[T any](db *gorm.DB, key string, target *T, def T) error {
	err := setting.LoadJSON(db, key, target)
	if !errors.Is(err, setting.ErrSettingNotFound) {
		return err
	}

	*target = def

	return setting.SaveJSON(db, key, target)
}

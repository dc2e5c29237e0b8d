package models

import "time"

// Backup frequencies accepted in GlobalSettings.BackupFrequency.
const (
	BackupDaily   = "daily"
	BackupWeekly  = "weekly"
	BackupMonthly = "monthly"
)

// GlobalSettings is the singleton row with site wide behavior switches.
type GlobalSettings struct {
	ID                    uint64    `gorm:"primaryKey"        json:"id"`
	SiteName              string    `gorm:"size:255"          json:"siteName"`
	SiteURL               string    `gorm:"size:255"          json:"siteUrl"`
	Timezone              string    `gorm:"size:64"           json:"timezone"`
	DateFormat            string    `gorm:"size:20"           json:"dateFormat"`
	Currency              string    `gorm:"size:8"            json:"currency"`
	SessionTimeout        int       `json:"sessionTimeout"` // minutes
	PasswordMinLength     int       `json:"passwordMinLength"`
	RequireTwoFactorAuth  bool      `json:"requireTwoFactorAuth"`
	AllowUserRegistration bool      `json:"allowUserRegistration"`
	EnableAutoBackups     bool      `json:"enableAutoBackups"`
	BackupFrequency       string    `gorm:"size:16"           json:"backupFrequency"`
	BackupRetentionDays   int       `json:"backupRetentionDays"`
	EnableCaching         bool      `json:"enableCaching"`
	EnableCompression     bool      `json:"enableCompression"`
	EnableCDN             bool      `json:"enableCDN"`
	StorageUse            string    `gorm:"size:32"           json:"storageUse"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// DefaultGlobalSettings is the row created on first read.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		SiteName:              "Website Name",
		SiteURL:               "https://your-domain.com",
		Timezone:              "Asia/Dhaka",
		DateFormat:            "YYYY-MM-DD",
		Currency:              "USD",
		SessionTimeout:        30, //nolint:mnd
		PasswordMinLength:     8,  //nolint:mnd
		AllowUserRegistration: true,
		EnableAutoBackups:     true,
		BackupFrequency:       BackupWeekly,
		BackupRetentionDays:   30, //nolint:mnd
		EnableCaching:         true,
		EnableCompression:     true,
		StorageUse:            "locally",
	}
}

// ContactInformation is the singleton row with the shop's contact details.
type ContactInformation struct {
	ID                    uint64    `gorm:"primaryKey" json:"id"`
	Email                 string    `gorm:"size:255"   json:"email"`
	Email2                string    `gorm:"size:255"   json:"email2"`
	Phone                 string    `gorm:"size:50"    json:"phone"`
	Phone2                string    `gorm:"size:50"    json:"phone2"`
	Address               string    `gorm:"size:500"   json:"address"`
	Address2              string    `gorm:"size:500"   json:"address2"`
	BusinessHoursWeekdays string    `gorm:"size:64"    json:"businessHoursWeekdays"`
	BusinessHoursWeekends string    `gorm:"size:64"    json:"businessHoursWeekends"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// DefaultContactInformation is the row created on first read.
func DefaultContactInformation() ContactInformation {
	return ContactInformation{
		Email:                 "info@example.com",
		Phone:                 "+880123456789",
		Address:               "123 Example Street, Dhaka, Bangladesh",
		BusinessHoursWeekdays: "09:00-18:00",
		BusinessHoursWeekends: "10:00-16:00",
	}
}

// SocialNetwork is the singleton row of social profile links.
type SocialNetwork struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	FacebookLink   string    `gorm:"size:500"   json:"facebookLink"`
	TwitterLink    string    `gorm:"size:500"   json:"twitterLink"`
	LinkedinLink   string    `gorm:"size:500"   json:"linkedinLink"`
	InstagramLink  string    `gorm:"size:500"   json:"instagramLink"`
	YoutubeLink    string    `gorm:"size:500"   json:"youtubeLink"`
	DribbleLink    string    `gorm:"size:500"   json:"dribbleLink"`
	WhatsappNumber string    `gorm:"size:50"    json:"whatsappNumber"`
	TelegramLink   string    `gorm:"size:500"   json:"telegramLink"`
	SnapchatLink   string    `gorm:"size:500"   json:"snapchatLink"`
	TiktokLink     string    `gorm:"size:500"   json:"tiktokLink"`
	ThreadsLink    string    `gorm:"size:500"   json:"threadsLink"`
	PinterestLink  string    `gorm:"size:500"   json:"pinterestLink"`
	RedditLink     string    `gorm:"size:500"   json:"redditLink"`
	GithubLink     string    `gorm:"size:500"   json:"githubLink"`
	WebsiteLink    string    `gorm:"size:500"   json:"websiteLink"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Links returns the URL fields keyed by their json name.
func (s *SocialNetwork) Links() map[string]string {
	return map[string]string{
		"facebookLink":  s.FacebookLink,
		"twitterLink":   s.TwitterLink,
		"linkedinLink":  s.LinkedinLink,
		"instagramLink": s.InstagramLink,
		"youtubeLink":   s.YoutubeLink,
		"dribbleLink":   s.DribbleLink,
		"telegramLink":  s.TelegramLink,
		"snapchatLink":  s.SnapchatLink,
		"tiktokLink":    s.TiktokLink,
		"threadsLink":   s.ThreadsLink,
		"pinterestLink": s.PinterestLink,
		"redditLink":    s.RedditLink,
		"githubLink":    s.GithubLink,
		"websiteLink":   s.WebsiteLink,
	}
}

// SiteConfiguration is the singleton row with branding.
type SiteConfiguration struct {
	ID               uint64    `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255"   json:"name"`
	ShortDescription string    `gorm:"size:500"   json:"shortDescription"`
	LongDescription  string    `gorm:"type:text"  json:"longDescription"`
	CopyRights       string    `gorm:"size:255"   json:"copyRights"`
	Logo             string    `gorm:"size:500"   json:"logo"`
	LogoPublicID     string    `gorm:"size:255"   json:"logoPublicId"`
	Favicon          string    `gorm:"size:500"   json:"favicon"`
	FaviconPublicID  string    `gorm:"size:255"   json:"faviconPublicId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DefaultSiteConfiguration is the row created on first read.
func DefaultSiteConfiguration() SiteConfiguration {
	return SiteConfiguration{
		Name:             "My Website",
		ShortDescription: "The best website ever",
		LongDescription:  "This is a long description of the website. You can customize it.",
		CopyRights:       "© 2025 My Website. All rights reserved.",
		Logo:             "default-logo.png",
		Favicon:          "default-favicon.ico",
	}
}

// TrackingIDs is the singleton row of analytics identifiers.
type TrackingIDs struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	GtmID     string    `gorm:"size:64"    json:"gtmId"`
	GaID      string    `gorm:"size:64"    json:"gaId"`
	FbID      string    `gorm:"size:64"    json:"fbId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the plural of the acronym readable.
func (TrackingIDs) TableName() string {
	return "tracking_ids"
}

// DefaultTrackingIDs is the row created on first read.
func DefaultTrackingIDs() TrackingIDs {
	return TrackingIDs{
		GtmID: "GTM-XXXXXXX",
		GaID:  "UA-XXXXXXX-X",
		FbID:  "1234567890",
	}
}

package settings

import "github.com/shopadmin/shop-admin/internal/db/models"

type (
	// GlobalSettingsInput is the body of PUT /api/global-settings.
	GlobalSettingsInput struct {
		ID                    uint64 `form:"id"                    json:"id"                    validate:"required"`
		SiteName              string `form:"siteName"              json:"siteName"`
		SiteURL               string `form:"siteUrl"               json:"siteUrl"               validate:"omitempty,http_url"`
		Timezone              string `form:"timezone"              json:"timezone"              validate:"required,timezone"`
		DateFormat            string `form:"dateFormat"            json:"dateFormat"            validate:"required,oneof=YYYY-MM-DD MM-DD-YYYY DD-MM-YYYY"`
		Currency              string `form:"currency"              json:"currency"              validate:"required,oneof=USD BDT EUR"`
		SessionTimeout        int    `form:"sessionTimeout"        json:"sessionTimeout"        validate:"min=1,max=1440"`
		PasswordMinLength     int    `form:"passwordMinLength"     json:"passwordMinLength"     validate:"min=6,max=10"`
		RequireTwoFactorAuth  bool   `form:"requireTwoFactorAuth"  json:"requireTwoFactorAuth"`
		AllowUserRegistration bool   `form:"allowUserRegistration" json:"allowUserRegistration"`
		EnableAutoBackups     bool   `form:"enableAutoBackups"     json:"enableAutoBackups"`
		BackupFrequency       string `form:"backupFrequency"       json:"backupFrequency"       validate:"required,oneof=daily weekly monthly"`
		BackupRetentionDays   int    `form:"backupRetentionDays"   json:"backupRetentionDays"   validate:"min=1,max=3650"`
		EnableCaching         bool   `form:"enableCaching"         json:"enableCaching"`
		EnableCompression     bool   `form:"enableCompression"     json:"enableCompression"`
		EnableCDN             bool   `form:"enableCDN"             json:"enableCDN"`
		StorageUse            string `form:"storageUse"            json:"storageUse"            validate:"omitempty,oneof=locally cloudinary"`
	}

	// ContactInput is the body of PUT /api/contact-information.
	ContactInput struct {
		ID                    uint64 `form:"id"                    json:"id"                    validate:"required"`
		Email                 string `form:"email"                 json:"email"                 validate:"omitempty,email"`
		Email2                string `form:"email2"                json:"email2"                validate:"omitempty,email"`
		Phone                 string `form:"phone"                 json:"phone"`
		Phone2                string `form:"phone2"                json:"phone2"`
		Address               string `form:"address"               json:"address"`
		Address2              string `form:"address2"              json:"address2"`
		BusinessHoursWeekdays string `form:"businessHoursWeekdays" json:"businessHoursWeekdays"`
		BusinessHoursWeekends string `form:"businessHoursWeekends" json:"businessHoursWeekends"`
	}

	// SocialInput is the body of PUT /api/social-network.
	SocialInput struct {
		ID             uint64 `form:"id"             json:"id"             validate:"required"`
		FacebookLink   string `form:"facebookLink"   json:"facebookLink"   validate:"omitempty,http_url"`
		TwitterLink    string `form:"twitterLink"    json:"twitterLink"    validate:"omitempty,http_url"`
		LinkedinLink   string `form:"linkedinLink"   json:"linkedinLink"   validate:"omitempty,http_url"`
		InstagramLink  string `form:"instagramLink"  json:"instagramLink"  validate:"omitempty,http_url"`
		YoutubeLink    string `form:"youtubeLink"    json:"youtubeLink"    validate:"omitempty,http_url"`
		DribbleLink    string `form:"dribbleLink"    json:"dribbleLink"    validate:"omitempty,http_url"`
		WhatsappNumber string `form:"whatsappNumber" json:"whatsappNumber"`
		TelegramLink   string `form:"telegramLink"   json:"telegramLink"   validate:"omitempty,http_url"`
		SnapchatLink   string `form:"snapchatLink"   json:"snapchatLink"   validate:"omitempty,http_url"`
		TiktokLink     string `form:"tiktokLink"     json:"tiktokLink"     validate:"omitempty,http_url"`
		ThreadsLink    string `form:"threadsLink"    json:"threadsLink"    validate:"omitempty,http_url"`
		PinterestLink  string `form:"pinterestLink"  json:"pinterestLink"  validate:"omitempty,http_url"`
		RedditLink     string `form:"redditLink"     json:"redditLink"     validate:"omitempty,http_url"`
		GithubLink     string `form:"githubLink"     json:"githubLink"     validate:"omitempty,http_url"`
		WebsiteLink    string `form:"websiteLink"    json:"websiteLink"    validate:"omitempty,http_url"`
	}

	// SiteInput is the text part of PUT /api/site-configuration.
	SiteInput struct {
		ID               uint64 `form:"id"               json:"id"               validate:"required"`
		Name             string `form:"name"             json:"name"`
		ShortDescription string `form:"shortDescription" json:"shortDescription"`
		LongDescription  string `form:"longDescription"  json:"longDescription"`
		CopyRights       string `form:"copyRights"       json:"copyRights"`
	}

	// TrackingInput is the body of PUT /api/tracking-ids.
	TrackingInput struct {
		ID    uint64 `form:"id"    json:"id"    validate:"required"`
		GtmID string `form:"gtmId" json:"gtmId"`
		GaID  string `form:"gaId"  json:"gaId"`
		FbID  string `form:"fbId"  json:"fbId"`
	}
)

func (in GlobalSettingsInput) apply(gs *models.GlobalSettings) {
	gs.SiteName = in.SiteName
	gs.SiteURL = in.SiteURL
	gs.Timezone = in.Timezone
	gs.DateFormat = in.DateFormat
	gs.Currency = in.Currency
	gs.SessionTimeout = in.SessionTimeout
	gs.PasswordMinLength = in.PasswordMinLength
	gs.RequireTwoFactorAuth = in.RequireTwoFactorAuth
	gs.AllowUserRegistration = in.AllowUserRegistration
	gs.EnableAutoBackups = in.EnableAutoBackups
	gs.BackupFrequency = in.BackupFrequency
	gs.BackupRetentionDays = in.BackupRetentionDays
	gs.EnableCaching = in.EnableCaching
	gs.EnableCompression = in.EnableCompression
	gs.EnableCDN = in.EnableCDN

	if in.StorageUse != "" {
		gs.StorageUse = in.StorageUse
	}
}

func (in ContactInput) apply(c *models.ContactInformation) {
	c.Email = in.Email
	c.Email2 = in.Email2
	c.Phone = in.Phone
	c.Phone2 = in.Phone2
	c.Address = in.Address
	c.Address2 = in.Address2
	c.BusinessHoursWeekdays = in.BusinessHoursWeekdays
	c.BusinessHoursWeekends = in.BusinessHoursWeekends
}

func (in SocialInput) apply(s *models.SocialNetwork) {
	s.FacebookLink = in.FacebookLink
	s.TwitterLink = in.TwitterLink
	s.LinkedinLink = in.LinkedinLink
	s.InstagramLink = in.InstagramLink
	s.YoutubeLink = in.YoutubeLink
	s.DribbleLink = in.DribbleLink
	s.WhatsappNumber = in.WhatsappNumber
	s.TelegramLink = in.TelegramLink
	s.SnapchatLink = in.SnapchatLink
	s.TiktokLink = in.TiktokLink
	s.ThreadsLink = in.ThreadsLink
	s.PinterestLink = in.PinterestLink
	s.RedditLink = in.RedditLink
	s.GithubLink = in.GithubLink
	s.WebsiteLink = in.WebsiteLink
}

func (in SiteInput) apply(s *models.SiteConfiguration) {
	s.Name = in.Name
	s.ShortDescription = in.ShortDescription
	s.LongDescription = in.LongDescription
	s.CopyRights = in.CopyRights
}

func (in TrackingInput) apply(t *models.TrackingIDs) {
	t.GtmID = in.GtmID
	t.GaID = in.GaID
	t.FbID = in.FbID
}

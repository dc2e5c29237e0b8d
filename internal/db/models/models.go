package models

// All returns every model for auto migration, parents before children.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&Setting{},
		&GlobalSettings{},
		&ContactInformation{},
		&SocialNetwork{},
		&SiteConfiguration{},
		&TrackingIDs{},
		&DynamicPage{},
		&DatabaseBackup{},
		&EmailConfiguration{},
	}
}

package models

import "time"

// Mailers.
const (
	MailerSMTP    = "smtp"
	MailerMailgun = "mailgun"
)

// SMTP connection security.
const (
	EncryptionNone = "none"
	EncryptionSSL  = "ssl"
	EncryptionTLS  = "tls"
)

// EmailConfiguration is the outbound mail account. EmailPassword holds the
// hex AES ciphertext and is never serialized.
type EmailConfiguration struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	EmailMailer     string    `gorm:"size:32"    json:"emailMailer"`
	EmailHost       string    `gorm:"size:255"   json:"emailHost"`
	EmailPort       int       `json:"emailPort"`
	EmailUserName   string    `gorm:"size:255"   json:"emailUserName"`
	EmailPassword   string    `gorm:"size:512"   json:"-"`
	EmailEncryption string    `gorm:"size:16"    json:"emailEncryption"`
	EmailFromName   string    `gorm:"size:255"   json:"emailFromName"`
	EmailAddress    string    `gorm:"size:255"   json:"emailAddress"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasPassword lets clients know a password is stored without revealing it.
func (e *EmailConfiguration) HasPassword() bool {
	return e.EmailPassword != ""
}

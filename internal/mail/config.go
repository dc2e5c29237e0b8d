package mail

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/secret"
	"github.com/shopadmin/shop-admin/internal/validation"
)

var (
	// ErrConfigIDRequired is returned when an update does not name the row.
	ErrConfigIDRequired = errors.New("Please provide a valid email configuration ID!")
	// ErrConfigNotFound is returned when the named row does not exist.
	ErrConfigNotFound = errors.New("Email configuration not found!")
	// ErrInvalidPort is returned for a port that is not a number.
	ErrInvalidPort = errors.New("Email port must be a number")
)

// ConfigInput is the body of PUT /api/email-configuration. The port arrives
// as text from form posts. An empty password keeps the stored one.
type ConfigInput struct {
	ID              uint64 `json:"id"`
	EmailMailer     string `json:"emailMailer"     validate:"omitempty,oneof=smtp mailgun"`
	EmailHost       string `json:"emailHost"`
	EmailPort       string `json:"emailPort"`
	EmailUserName   string `json:"emailUserName"`
	EmailPassword   string `json:"emailPassword"`
	EmailEncryption string `json:"emailEncryption" validate:"omitempty,oneof=none ssl tls"`
	EmailFromName   string `json:"emailFromName"`
	EmailAddress    string `json:"emailAddress"    validate:"omitempty,email"`
}

// ConfigStore reads and writes the relay configuration.
type ConfigStore struct {
	db       *gorm.DB
	box      *secret.Box
	validate *validator.Validate
}

// NewConfigStore creates a ConfigStore. Passwords are stored in plain text
// when box is nil.
func NewConfigStore(db *gorm.DB, box *secret.Box) *ConfigStore {
	return &ConfigStore{db: db, box: box, validate: validation.New()}
}

// Get returns the relay configuration, creating an empty row on first use.
func (s *ConfigStore) Get(ctx context.Context) (*models.EmailConfiguration, error) {
	var cfg models.EmailConfiguration

	err := s.db.WithContext(ctx).Order("id desc").First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg = models.EmailConfiguration{EmailMailer: models.MailerSMTP}

	return &cfg, s.db.WithContext(ctx).Create(&cfg).Error
}

// Update stores in. The password is encrypted again only when one is given.
func (s *ConfigStore) Update(ctx context.Context, in ConfigInput) (*models.EmailConfiguration, error) {
	if in.ID == 0 {
		return nil, ErrConfigIDRequired
	}

	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	var cfg models.EmailConfiguration

	err := s.db.WithContext(ctx).First(&cfg, in.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConfigNotFound
	}

	if err != nil {
		return nil, err
	}

	if port := strings.TrimSpace(in.EmailPort); port != "" {
		n, errAtoi := strconv.Atoi(port)
		if errAtoi != nil || n < 0 || n > 65535 {
			return nil, ErrInvalidPort
		}

		cfg.EmailPort = n
	}

	if in.EmailMailer != "" {
		cfg.EmailMailer = in.EmailMailer
	}

	cfg.EmailHost = in.EmailHost
	cfg.EmailUserName = in.EmailUserName
	cfg.EmailEncryption = in.EmailEncryption
	cfg.EmailFromName = in.EmailFromName
	cfg.EmailAddress = in.EmailAddress

	if in.EmailPassword != "" {
		cfg.EmailPassword = in.EmailPassword
		if s.box != nil {
			cfg.EmailPassword = s.box.Encrypt(in.EmailPassword)
		}
	}

	if err = s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}

	return &cfg, nil
}

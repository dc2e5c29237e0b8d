// Package mail delivers transactional email through the relay stored in the
// email configuration row. The configuration is read on every send so an
// admin can change the relay without a restart.
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/secret"
)

//go:embed templates/*.gohtml
var embeddedTemplates embed.FS

const layoutTemplate = "layout"

var (
	// ErrNotConfigured is returned when no usable relay is stored.
	ErrNotConfigured = errors.New("Email configuration not found.")
	// ErrDecrypt is returned when the stored relay password can not be read.
	ErrDecrypt = errors.New("Failed to decrypt email password.")
)

type (
	// Message is one rendered email.
	Message struct {
		FromName    string
		FromAddress string
		To          []string
		Subject     string
		HTML        string
	}

	// Transport delivers a rendered message.
	Transport interface {
		Send(ctx context.Context, msg Message) error
	}

	// Dialer builds the transport for a relay configuration and its plain password.
	Dialer func(cfg models.EmailConfiguration, password string) (Transport, error)

	// Branding supplies the header and footer of every email.
	Branding interface {
		Site(ctx context.Context) (*models.SiteConfiguration, error)
		Contact(ctx context.Context) (*models.ContactInformation, error)
	}
)

// Mailer renders templates and hands them to the configured relay.
type Mailer struct {
	db          *gorm.DB
	box         *secret.Box
	branding    Branding
	views       *html.Engine
	dial        Dialer
	frontendURL string
}

// New creates a Mailer. box may be nil when passwords are stored in plain text.
func New(db *gorm.DB, box *secret.Box, branding Branding, frontendURL string) (*Mailer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}

	views := html.NewFileSystem(http.FS(sub), ".gohtml")
	if err = views.Load(); err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &Mailer{
		db:          db,
		box:         box,
		branding:    branding,
		views:       views,
		dial:        NewTransport,
		frontendURL: frontendURL,
	}, nil
}

// WithDialer replaces the transport factory.
func (m *Mailer) WithDialer(d Dialer) *Mailer {
	m.dial = d

	return m
}

// relay returns the stored configuration together with the decrypted password.
func (m *Mailer) relay(ctx context.Context) (models.EmailConfiguration, string, error) {
	var cfg models.EmailConfiguration

	err := m.db.WithContext(ctx).Order("id desc").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cfg, "", ErrNotConfigured
	}

	if err != nil {
		return cfg, "", err
	}

	if cfg.EmailHost == "" || cfg.EmailAddress == "" {
		return cfg, "", ErrNotConfigured
	}

	if cfg.EmailPassword == "" || m.box == nil {
		return cfg, cfg.EmailPassword, nil
	}

	password, err := m.box.Decrypt(cfg.EmailPassword)
	if err != nil {
		return cfg, "", ErrDecrypt
	}

	return cfg, password, nil
}

func (m *Mailer) render(ctx context.Context, name string, data map[string]any) (string, string, error) {
	site, err := m.branding.Site(ctx)
	if err != nil {
		return "", "", err
	}

	contact, err := m.branding.Contact(ctx)
	if err != nil {
		return "", "", err
	}

	binding := map[string]any{
		"Site":        site,
		"Contact":     contact,
		"Year":        time.Now().Year(),
		"FrontendURL": m.frontendURL,
	}

	for k, v := range data {
		binding[k] = v
	}

	var buf bytes.Buffer
	if err = m.views.Render(&buf, name, binding, layoutTemplate); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.String(), site.Name, nil
}

// Send renders template name wrapped in the layout and delivers it to to.
func (m *Mailer) Send(ctx context.Context, to, subject, name string, data map[string]any) error {
	cfg, password, err := m.relay(ctx)
	if err != nil {
		return err
	}

	body, siteName, err := m.render(ctx, name, data)
	if err != nil {
		return err
	}

	transport, err := m.dial(cfg, password)
	if err != nil {
		return err
	}

	fromName := cfg.EmailFromName
	if fromName == "" {
		fromName = siteName
	}

	msg := Message{
		FromName:    fromName,
		FromAddress: cfg.EmailAddress,
		To:          []string{to},
		Subject:     subject,
		HTML:        body,
	}

	if err = transport.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", to).Str("template", name).Msg("failed to send email")

		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Debug().Str("to", to).Str("template", name).Str("mailer", cfg.EmailMailer).Msg("email sent")

	return nil
}

package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mailgun/mailgun-go/v4"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

const smtpTimeout = 30 * time.Second

// NewTransport picks the transport matching cfg.EmailMailer.
func NewTransport(cfg models.EmailConfiguration, password string) (Transport, error) {
	switch cfg.EmailMailer {
	case "", models.MailerSMTP:
		return NewSMTPTransport(cfg, password), nil
	case models.MailerMailgun:
		return NewMailgunTransport(cfg, password), nil
	default:
		return nil, fmt.Errorf("unknown mailer %q", cfg.EmailMailer)
	}
}

// SMTPTransport talks to a relay with PLAIN authentication.
type SMTPTransport struct {
	addr       string
	host       string
	encryption string
	username   string
	password   string
}

// NewSMTPTransport creates an SMTP transport. Ports 465 imply implicit TLS when
// no encryption is configured.
func NewSMTPTransport(cfg models.EmailConfiguration, password string) *SMTPTransport {
	port := cfg.EmailPort
	if port == 0 {
		port = 587
	}

	enc := strings.ToLower(cfg.EmailEncryption)
	if enc == "" && port == 465 {
		enc = models.EncryptionSSL
	}

	username := cfg.EmailUserName
	if username == "" {
		username = cfg.EmailAddress
	}

	return &SMTPTransport{
		addr:       net.JoinHostPort(cfg.EmailHost, strconv.Itoa(port)),
		host:       cfg.EmailHost,
		encryption: enc,
		username:   username,
		password:   password,
	}
}

func (t *SMTPTransport) dial() (*smtp.Client, error) {
	tlsConfig := &tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}

	switch t.encryption {
	case models.EncryptionSSL:
		return smtp.DialTLS(t.addr, tlsConfig)
	case models.EncryptionTLS:
		return smtp.DialStartTLS(t.addr, tlsConfig)
	default:
		return smtp.Dial(t.addr)
	}
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := t.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.addr, err)
	}
	defer c.Close()

	c.CommandTimeout = smtpTimeout
	c.SubmissionTimeout = smtpTimeout

	if t.password != "" {
		if err = c.Auth(sasl.NewPlainClient("", t.username, t.password)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err = c.SendMail(msg.FromAddress, msg.To, bytes.NewReader(compose(msg))); err != nil {
		return err
	}

	return c.Quit()
}

// compose builds a single part text/html message with a quoted-printable body.
func compose(msg Message) []byte {
	var b bytes.Buffer

	from := netmail.Address{Name: msg.FromName, Address: msg.FromAddress}

	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	// writes into a bytes.Buffer do not fail; the writer turns every line break
	// into CRLF and folds lines at 76 characters
	qp := quotedprintable.NewWriter(&b)
	_, _ = qp.Write([]byte(msg.HTML))
	_ = qp.Close()

	return b.Bytes()
}

// MailgunTransport sends through the Mailgun HTTP api. The configured host is
// the sending domain and the stored password is the api key.
type MailgunTransport struct {
	mg mailgun.Mailgun
}

// NewMailgunTransport creates a Mailgun transport.
func NewMailgunTransport(cfg models.EmailConfiguration, apiKey string) *MailgunTransport {
	return &MailgunTransport{mg: mailgun.NewMailgun(cfg.EmailHost, apiKey)}
}

// Send implements Transport.
func (t *MailgunTransport) Send(ctx context.Context, msg Message) error {
	from := netmail.Address{Name: msg.FromName, Address: msg.FromAddress}

	m := mailgun.NewMessage(from.String(), msg.Subject, "", msg.To...)
	m.SetHTML(msg.HTML)

	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	_, _, err := t.mg.Send(ctx, m)
	if err != nil && strings.Contains(err.Error(), "401") {
		return fmt.Errorf("unauthorized: verify the Mailgun api key and domain: %w", err)
	}

	return err
}

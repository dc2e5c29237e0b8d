package config

import (
	"time"

	"github.com/shopadmin/shop-admin/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Crypto    Crypto
	Media     Media
	Backup    Backup
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool     // disable recover middleware
	Port           int      // listening port for the webserver
	ShutDownTime   int      // wait time for shutdown in seconds
	URL            string   // public base url of this server, used to absolutize media urls
	FrontendURL    string   // base url of the admin frontend (redirects, email links, canonical urls)
	APIKey         string   // value expected in the X-API-Key header, empty disables the check
	AllowedOrigins []string // CORS origins, defaults to FrontendURL
	BodyLimit      int      // max request body size in bytes
}

// Auth holds authentication settings.
type Auth struct {
	JWTSecret       string
	TokenTTL        time.Duration // lifetime of a JWT and of its session row
	OTPTTL          time.Duration // lifetime of an emailed login code
	ResetCodeTTL    time.Duration // lifetime of a password reset code
	VerificationTTL time.Duration // lifetime of an email verification token
	OAuthStateTTL   time.Duration

	// RequireEmailVerification creates self-registered users as pending until
	// they follow the emailed verification link.
	RequireEmailVerification bool

	Bootstrap Bootstrap
	Google    GoogleAuth
	LDAP      LDAPAuth
}

// Bootstrap is the super admin account seeded into an empty user table.
type Bootstrap struct {
	Email    string
	Username string
	Password string
}

// GoogleAuth holds the Google OAuth client settings.
type GoogleAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
}

// LDAPAuth holds the optional directory login settings.
type LDAPAuth struct {
	Enabled      bool
	Host         string
	Port         int
	UseSSL       bool
	UseTLS       bool
	SkipVerify   bool
	BindDN       string
	BindPassword string
	BaseDN       string
	UserFilter   string
	UsernameAttr string
	EmailAttr    string
	Timeout      int
}

// Crypto holds the key material used to encrypt credentials at rest.
type Crypto struct {
	EncryptionKey string
	EncryptionIV  string
}

// Media holds upload storage settings.
type Media struct {
	Driver      string // local or cloudinary
	UploadDir   string
	MaxFileSize int64
	Cloudinary  Cloudinary
}

// Cloudinary credentials.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Backup holds database dump settings.
type Backup struct {
	Dir     string
	Command string // optional shell command, {{dest}} is replaced with the target path
	Timeout time.Duration
}

// Package config handles input from etc/main.toml, .env files and the environment.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/shopadmin/shop-admin/internal/secret"
)

const (
	// EnvPrefix is the prefix of environment variables overriding config keys,
	// e.g. SHOP_ADMIN_WEBSERVER_PORT overrides webserver.port.
	EnvPrefix = "SHOP_ADMIN"

	// EnvConfigJSON holds a JSON document merged over the final configuration.
	EnvConfigJSON = "SHOP_ADMIN_CONFIG_JSON"

	// Media drivers.
	MediaDriverLocal      = "local"
	MediaDriverCloudinary = "cloudinary"

	defaultPort         = 8800
	defaultShutDownTime = 5
	defaultBodyLimit    = 50 * 1024 * 1024
	defaultMaxFileSize  = 1024 * 1024
)

// envBindings maps the conventional deployment variables onto config keys.
var envBindings = map[string]string{ //nolint:gochecknoglobals
	"DATABASE_URL":          "db.url",
	"JWT_SECRET":            "auth.jwtSecret",
	"GOOGLE_CLIENT_ID":      "auth.google.clientId",
	"GOOGLE_CLIENT_SECRET":  "auth.google.clientSecret",
	"GOOGLE_CALLBACK_URL":   "auth.google.callbackUrl",
	"ENCRYPTION_KEY":        "crypto.encryptionKey",
	"ENCRYPTION_IV":         "crypto.encryptionIv",
	"FRONTEND_LINK":         "webserver.frontendUrl",
	"SERVER_LINK":           "webserver.url",
	"SPECIAL_API_KEY":       "webserver.apiKey",
	"PORT":                  "webserver.port",
	"FILE_STORE_TYPE":       "media.driver",
	"CLOUDINARY_CLOUD_NAME": "media.cloudinary.cloudName",
	"CLOUDINARY_API_KEY":    "media.cloudinary.apiKey",
	"CLOUDINARY_API_SECRET": "media.cloudinary.apiSecret",
}

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindConventionalEnv(v)

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "Shop Admin")
	v.SetDefault("db.gormEngine", EngineMySQL)
	v.SetDefault("db.port", 3306) //nolint:mnd
	v.SetDefault("log.logLevel", "info")
	v.SetDefault("log.appName", "shop-admin")
	v.SetDefault("log.serviceName", "shop-admin")
	v.SetDefault("log.console.enabled", true)
	v.SetDefault("webserver.port", defaultPort)
	v.SetDefault("webserver.shutDownTime", defaultShutDownTime)
	v.SetDefault("webserver.bodyLimit", defaultBodyLimit)
	v.SetDefault("webserver.url", "http://localhost:8800")
	v.SetDefault("webserver.frontendUrl", "http://localhost:3000")
	v.SetDefault("auth.tokenTTL", 72*time.Hour)          //nolint:mnd
	v.SetDefault("auth.otpTTL", 5*time.Minute)           //nolint:mnd
	v.SetDefault("auth.resetCodeTTL", 10*time.Minute)    //nolint:mnd
	v.SetDefault("auth.verificationTTL", 24*time.Hour)   //nolint:mnd
	v.SetDefault("auth.oauthStateTTL", 10*time.Minute)   //nolint:mnd
	v.SetDefault("auth.requireEmailVerification", true)
	v.SetDefault("auth.google.providerUrl", "https://accounts.google.com")
	v.SetDefault("auth.google.clientId", "")
	v.SetDefault("auth.google.clientSecret", "")
	v.SetDefault("auth.google.callbackUrl", "")
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("crypto.encryptionKey", "")
	v.SetDefault("crypto.encryptionIv", "")
	v.SetDefault("webserver.apiKey", "")
	v.SetDefault("db.url", "")
	v.SetDefault("media.driver", MediaDriverLocal)
	v.SetDefault("media.uploadDir", "./uploads")
	v.SetDefault("media.maxFileSize", defaultMaxFileSize)
	v.SetDefault("media.cloudinary.folder", "shop-admin")
	v.SetDefault("backup.dir", "./backups")
	v.SetDefault("backup.timeout", 30*time.Minute) //nolint:mnd
}

// bindConventionalEnv applies the well known deployment variables. They win
// over the config file and the prefixed environment.
func bindConventionalEnv(v *viper.Viper) {
	for env, key := range envBindings {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			v.Set(key, value)
		}
	}
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config json override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(out) + "\n", nil
}

// validate the config and fill in derived defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Auth.JWTSecret == "" {
		return errors.Wrap(ErrEmptyJWTSecret, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "", EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownDBEngine, invalidErrMessage)
	}

	// "locally" is what older deployments put into FILE_STORE_TYPE
	switch c.Media.Driver {
	case "", "locally":
		c.Media.Driver = MediaDriverLocal
	case MediaDriverLocal:
	case MediaDriverCloudinary:
		cl := c.Media.Cloudinary
		if cl.CloudName == "" || cl.APIKey == "" || cl.APISecret == "" {
			return errors.Wrap(ErrMissingCloudinaryCredentials, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownMediaDriver, invalidErrMessage)
	}

	if c.Auth.Google.Enabled && (c.Auth.Google.ClientID == "" || c.Auth.Google.ClientSecret == "") {
		return errors.Wrap(ErrGoogleClientMissing, invalidErrMessage)
	}

	if c.Crypto.EncryptionKey != "" || c.Crypto.EncryptionIV != "" {
		if _, err := secret.New(c.Crypto.EncryptionKey, c.Crypto.EncryptionIV); err != nil {
			return errors.Wrap(err, invalidErrMessage)
		}
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if len(c.Webserver.AllowedOrigins) == 0 && c.Webserver.FrontendURL != "" {
		c.Webserver.AllowedOrigins = []string{c.Webserver.FrontendURL}
	}

	if c.Media.MaxFileSize == 0 {
		c.Media.MaxFileSize = defaultMaxFileSize
	}

	return nil
}

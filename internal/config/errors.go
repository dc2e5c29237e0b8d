package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrEmptyJWTSecret error if no JWT signing secret is configured.
	ErrEmptyJWTSecret = errors.New("config auth.jwtSecret can not be empty")

	// ErrUnknownDBEngine error if db.gormEngine is not supported.
	ErrUnknownDBEngine = errors.New("config db.gormEngine must be mysql, postgres or sqlite")

	// ErrUnknownMediaDriver error if media.driver is not supported.
	ErrUnknownMediaDriver = errors.New("config media.driver must be local or cloudinary")

	// ErrMissingCloudinaryCredentials error if the cloudinary driver lacks credentials.
	ErrMissingCloudinaryCredentials = errors.New("config media.cloudinary credentials are incomplete")

	// ErrGoogleClientMissing error if google login is enabled without a client.
	ErrGoogleClientMissing = errors.New("config auth.google.clientId and clientSecret are required when enabled")
)

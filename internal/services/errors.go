package services

import "errors"

// Secret-workflow error taxonomy. Handlers collapse ErrSecretNotFound,
// ErrSecretMismatch, ErrSecretExpired and ErrIdentityNotFound into one
// generic client message so responses never reveal whether an email is
// registered or how close a guess was. The distinct values exist for logging
// and tests.
var (
	ErrValidation          = errors.New("validation failed")
	ErrSecretNotFound      = errors.New("no pending secret for identity")
	ErrSecretMismatch      = errors.New("secret mismatch")
	ErrSecretExpired       = errors.New("secret expired")
	ErrDeliveryFailed      = errors.New("email delivery failed")
	ErrIdentityConflict    = errors.New("account already exists")
	ErrIdentityNotFound    = errors.New("account not found")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"learnset/internal/models"
	"learnset/internal/repositories"
	"learnset/internal/secrets"
	"learnset/internal/utils"
)

const (
	// RegistrationOTPTTL is how long a 6-digit registration code stays valid.
	RegistrationOTPTTL = 5 * time.Minute
	// ResetTokenTTL is how long a password-reset token stays valid.
	ResetTokenTTL = 60 * time.Minute
)

// SecretService owns issuance and verification of short-lived secrets.
// Consumption is a separate step: callers delete the entry only after the
// privileged mutation guarded by it has succeeded.
type SecretService interface {
	Issue(ctx context.Context, email, purpose string) (string, error)
	Verify(ctx context.Context, email, purpose, supplied string) error
	Consume(ctx context.Context, email, purpose string) error
}

type secretService struct {
	secretRepo repositories.SecretRepository
	now        func() time.Time
}

func NewSecretService(secretRepo repositories.SecretRepository) SecretService {
	return &secretService{secretRepo: secretRepo, now: time.Now}
}

func (s *secretService) Issue(ctx context.Context, email, purpose string) (string, error) {
	var (
		secret string
		ttl    time.Duration
		err    error
	)

	switch purpose {
	case models.SecretPurposeRegistration:
		secret, err = secrets.NumericCode()
		ttl = RegistrationOTPTTL
	case models.SecretPurposePasswordReset:
		secret, err = secrets.OpaqueToken()
		ttl = ResetTokenTTL
	default:
		return "", fmt.Errorf("unknown secret purpose %q", purpose)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	// Overwrites any previously issued secret for this pair; the old one
	// can no longer be verified even inside its own TTL.
	if err := s.secretRepo.Put(ctx, email, purpose, secret, ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	utils.SecretsIssuedTotal.WithLabelValues(purpose).Inc()
	log.Info().Str("email", email).Str("purpose", purpose).Dur("ttl", ttl).Msg("Secret issued")
	return secret, nil
}

func (s *secretService) Verify(ctx context.Context, email, purpose, supplied string) error {
	stored, err := s.secretRepo.Get(ctx, email, purpose)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if stored == nil {
		utils.SecretVerificationsTotal.WithLabelValues(purpose, "not_found").Inc()
		log.Warn().Str("email", email).Str("purpose", purpose).Msg("Verification attempt with no pending secret")
		return ErrSecretNotFound
	}

	if subtle.ConstantTimeCompare([]byte(stored.Secret), []byte(supplied)) != 1 {
		utils.SecretVerificationsTotal.WithLabelValues(purpose, "mismatch").Inc()
		log.Warn().Str("email", email).Str("purpose", purpose).Msg("Verification attempt with wrong secret")
		return ErrSecretMismatch
	}

	if s.now().After(stored.ExpiresAt) {
		// Cleanup on the way out; expiry is re-checked here on every
		// attempt, so a missed delete is only a space leak.
		if err := s.secretRepo.Delete(ctx, email, purpose); err != nil {
			log.Error().Err(err).Str("email", email).Msg("Failed to delete expired secret")
		}
		utils.SecretVerificationsTotal.WithLabelValues(purpose, "expired").Inc()
		log.Warn().Str("email", email).Str("purpose", purpose).Msg("Verification attempt with expired secret")
		return ErrSecretExpired
	}

	utils.SecretVerificationsTotal.WithLabelValues(purpose, "ok").Inc()
	return nil
}

func (s *secretService) Consume(ctx context.Context, email, purpose string) error {
	if err := s.secretRepo.Delete(ctx, email, purpose); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	log.Info().Str("email", email).Str("purpose", purpose).Msg("Secret consumed")
	return nil
}

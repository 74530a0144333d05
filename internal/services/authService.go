package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"

	"learnset/internal/identity"
	"learnset/internal/models"
	"learnset/internal/utils"
)

// AuthService ties the secret workflows to the identity provider: it issues
// OTP codes and reset links, and performs the privileged mutations they
// guard. Side effects are strictly ordered verify -> mutate -> consume.
type AuthService interface {
	SendOTP(ctx context.Context, req *models.SendOTPRequest) error
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error)
	SendResetLink(ctx context.Context, req *models.SendResetEmailRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	Login(ctx context.Context, creds *models.Login) (string, error)
}

type authService struct {
	secretSvc SecretService
	provider  identity.Provider
	mailer    EmailService
	baseURL   string
}

func NewAuthService(secretSvc SecretService, provider identity.Provider, mailer EmailService) AuthService {
	return &authService{
		secretSvc: secretSvc,
		provider:  provider,
		mailer:    mailer,
		baseURL:   os.Getenv("BASE_URL"),
	}
}

// SendOTP issues a 6-digit registration code and mails it. The response to
// the caller is the same whether or not the email is already registered.
func (a *authService) SendOTP(ctx context.Context, req *models.SendOTPRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	code, err := a.secretSvc.Issue(ctx, req.Email, models.SecretPurposeRegistration)
	if err != nil {
		return err
	}

	// The stored code stays valid if delivery fails; re-requesting simply
	// overwrites it with a fresh one.
	if err := a.mailer.SendOTPEmail(req.Email, code); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to send OTP email")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	log.Info().Str("email", req.Email).Msg("OTP email dispatched")
	return nil
}

// Register verifies the submitted OTP and creates the account. The pending
// secret is consumed only after the identity provider reports success, so a
// transient provider failure leaves the code retryable.
func (a *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := a.secretSvc.Verify(ctx, req.Email, models.SecretPurposeRegistration, req.OTP); err != nil {
		return nil, "", err
	}

	user, err := a.provider.CreateUser(ctx, req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrConflict) {
			// The secret is left in place; the user may retry after
			// resolving the conflict.
			return nil, "", ErrIdentityConflict
		}
		log.Error().Err(err).Str("email", req.Email).Msg("Identity provider failed to create account")
		return nil, "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if err := a.secretSvc.Consume(ctx, req.Email, models.SecretPurposeRegistration); err != nil {
		// The account exists; the leftover entry expires on its own.
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to consume OTP after registration")
	}

	token, err := utils.GenerateJWT(user.ID, user.Admin)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Could not generate token for new account")
		return user, "", nil
	}

	log.Info().Str("user_id", user.ID.Hex()).Str("email", user.Email).Msg("User registered successfully")
	return user, token, nil
}

// SendResetLink issues a high-entropy token and mails a link carrying the
// token and the identity as its only query parameters.
func (a *authService) SendResetLink(ctx context.Context, req *models.SendResetEmailRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if a.baseURL == "" {
		log.Error().Msg("BASE_URL environment variable is not set")
		return fmt.Errorf("%w: reset link base URL not configured", ErrUpstreamUnavailable)
	}

	token, err := a.secretSvc.Issue(ctx, req.Email, models.SecretPurposePasswordReset)
	if err != nil {
		return err
	}

	resetLink := buildResetLink(a.baseURL, token, req.Email)

	if err := a.mailer.SendResetEmail(req.Email, resetLink); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to send password reset email")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	log.Info().Str("email", req.Email).Msg("Password reset email dispatched")
	return nil
}

// ResetPassword verifies the submitted token and updates the password,
// consuming the token only once the provider accepted the change.
func (a *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := a.secretSvc.Verify(ctx, req.Email, models.SecretPurposePasswordReset, req.Token); err != nil {
		return err
	}

	if err := a.provider.UpdatePassword(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Stale or tampered identity parameter. The token is left to
			// expire naturally.
			log.Warn().Str("email", req.Email).Msg("Password reset for unknown account")
			return ErrIdentityNotFound
		}
		log.Error().Err(err).Str("email", req.Email).Msg("Identity provider failed to update password")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if err := a.secretSvc.Consume(ctx, req.Email, models.SecretPurposePasswordReset); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to consume reset token after password change")
	}

	log.Info().Str("email", req.Email).Msg("Password has been reset")
	return nil
}

func (a *authService) Login(ctx context.Context, creds *models.Login) (string, error) {
	if err := utils.ValidateStruct(creds); err != nil {
		return "", fmt.Errorf("%w: %s", ErrValidation, err)
	}

	user, err := a.provider.VerifyPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			log.Warn().Str("email", creds.Email).Msg("Invalid credentials during login attempt")
			return "", ErrIdentityNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	token, err := utils.GenerateJWT(user.ID, user.Admin)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Could not generate token for user")
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")
	return token, nil
}

// buildResetLink assembles <base>/reset-password?token=<token>&email=<email>.
// The verification engine reconstructs (identity, secret) from exactly these
// two parameters.
func buildResetLink(base, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return fmt.Sprintf("%s/reset-password?%s", base, q.Encode())
}

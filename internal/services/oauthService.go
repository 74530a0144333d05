package services

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog/log"

	"learnset/internal/identity"
	"learnset/internal/utils"
)

const (
	MaxAge = 86400 * 30
	IsProd = false
)

// OAuthService completes social sign-in: the account is created on first
// login and a regular session JWT is issued either way.
type OAuthService interface {
	HandleLogin(ctx context.Context, u goth.User) (string, error)
}

type oauthService struct {
	provider identity.Provider
}

func NewOAuthService(provider identity.Provider) OAuthService {
	return &oauthService{provider: provider}
}

func InitializeGoth() {
	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	googleClientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	sessionKey := os.Getenv("SESSION_KEY")

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.MaxAge(MaxAge)

	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = IsProd
	store.Options.SameSite = http.SameSiteLaxMode

	gothic.Store = store

	goth.UseProviders(
		google.New(googleClientID, googleClientSecret, baseURL+"/api/auth/google/callback"),
	)
	log.Info().Msg("Goth providers initialized")
}

func (a *oauthService) HandleLogin(ctx context.Context, u goth.User) (string, error) {
	log.Info().Str("email", u.Email).Msg("Attempting to handle social login")
	if u.Email == "" {
		log.Error().Msg("Missing email in provider user data")
		return "", errors.New("missing email")
	}

	user, err := a.provider.FindByEmail(ctx, u.Email)
	if err != nil {
		if !errors.Is(err, identity.ErrNotFound) {
			log.Error().Err(err).Str("email", u.Email).Msg("Error finding user by email")
			return "", err
		}

		log.Info().Str("email", u.Email).Msg("User not found, creating new account")
		name := u.Name
		if name == "" {
			name = u.NickName
		}
		user, err = a.provider.CreateUser(ctx, u.Email, name, "")
		if err != nil {
			log.Error().Err(err).Str("email", u.Email).Msg("Error creating account for social login")
			return "", err
		}
	}

	token, err := utils.GenerateJWT(user.ID, user.Admin)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Error generating JWT for social login")
		return "", errors.New("error generating JWT")
	}

	return token, nil
}

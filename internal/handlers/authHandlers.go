package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"

	"learnset/internal/models"
	"learnset/internal/services"
	"learnset/internal/utils"
)

// One generic message for every way a code can be wrong. Distinguishing
// not-found from mismatch from expired would tell a caller whether an email
// is registered or how close a guess was.
const (
	genericOTPFailure  = "Invalid or expired OTP."
	genericLinkFailure = "Invalid or expired password reset link."
)

type AuthHandler struct {
	authService  services.AuthService
	oauthService services.OAuthService
}

func NewAuthHandler(authService services.AuthService, oauthService services.OAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, oauthService: oauthService}
}

func (a *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.authService.SendOTP(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, "Invalid email address", http.StatusBadRequest)
		case errors.Is(err, services.ErrDeliveryFailed):
			utils.SendJSONError(w, "Failed to send OTP", http.StatusBadGateway)
		default:
			log.Error().Err(err).Msg("SendOTP failed")
			utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		}
		return
	}

	// Same acknowledgment whether or not the email is registered.
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
}

func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := a.authService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrSecretNotFound),
			errors.Is(err, services.ErrSecretMismatch),
			errors.Is(err, services.ErrSecretExpired):
			utils.SendJSONError(w, genericOTPFailure, http.StatusUnauthorized)
		case errors.Is(err, services.ErrIdentityConflict):
			utils.SendJSONError(w, "An account with this email already exists.", http.StatusConflict)
		default:
			log.Error().Err(err).Msg("Register failed")
			utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"uid":     user.ID.Hex(),
		"token":   token,
	})
}

func (a *AuthHandler) SendResetEmail(w http.ResponseWriter, r *http.Request) {
	var req models.SendResetEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.authService.SendResetLink(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, "Invalid email address", http.StatusBadRequest)
		case errors.Is(err, services.ErrDeliveryFailed):
			utils.SendJSONError(w, "Failed to send password reset email", http.StatusBadGateway)
		default:
			log.Error().Err(err).Msg("SendResetEmail failed")
			utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent successfully"})
}

func (a *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.authService.ResetPassword(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrSecretNotFound),
			errors.Is(err, services.ErrSecretMismatch),
			errors.Is(err, services.ErrSecretExpired),
			errors.Is(err, services.ErrIdentityNotFound):
			utils.SendJSONError(w, genericLinkFailure, http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("ResetPassword failed")
			utils.SendJSONError(w, "Failed to reset password. Please try again.", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully."})
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Login
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := a.authService.Login(r.Context(), &creds)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrIdentityNotFound):
			utils.SendJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			log.Error().Err(err).Msg("Login failed")
			utils.SendJSONError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (a *AuthHandler) ProviderAuth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider := vars["provider"]

	if provider == "" {
		log.Error().Msg("Provider not specified in URL")
		http.Error(w, "Provider not specified", http.StatusBadRequest)
		return
	}

	log.Info().Str("provider", provider).Msg("Initiating authentication with provider")

	gothic.BeginAuthHandler(w, r)
}

func (a *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("Provider callback initiated")

	pUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Error completing user authentication")
		http.Redirect(w, r, "/api/auth/error", http.StatusTemporaryRedirect)
		return
	}

	token, err := a.oauthService.HandleLogin(r.Context(), pUser)
	if err != nil {
		log.Error().Err(err).Msg("Error handling login after provider authentication")
		http.Redirect(w, r, "/api/auth/error", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	log.Info().Str("email", pUser.Email).Msg("JWT cookie set successfully")

	http.Redirect(w, r, "/api/auth/success", http.StatusTemporaryRedirect)
}

func (a *AuthHandler) AuthSuccess(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Authentication successful! Redirecting..."))
}

func (a *AuthHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Authentication failed. Please try again.", http.StatusBadRequest)
}

package models

import (
	"time"
)

// Secret purposes. At most one pending secret exists per (email, purpose)
// pair; a new issuance for the same pair overwrites the previous one.
const (
	SecretPurposeRegistration  = "registration"
	SecretPurposePasswordReset = "password_reset"
)

type PendingSecret struct {
	Email     string    `bson:"email" json:"email"`
	Purpose   string    `bson:"purpose" json:"purpose"`
	Secret    string    `bson:"secret" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

type SendResetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required,hexadecimal"`
	Password string `json:"password" validate:"required,min=6"`
}

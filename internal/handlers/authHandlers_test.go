package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnset/internal/models"
	"learnset/internal/services"
)

// stubAuthService lets each test pin the service outcome.
type stubAuthService struct {
	sendOTPErr   error
	registerErr  error
	sendResetErr error
	resetErr     error
	loginToken   string
	loginErr     error
}

func (s *stubAuthService) SendOTP(ctx context.Context, req *models.SendOTPRequest) error {
	return s.sendOTPErr
}
func (s *stubAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	if s.registerErr != nil {
		return nil, "", s.registerErr
	}
	return &models.User{}, "token", nil
}
func (s *stubAuthService) SendResetLink(ctx context.Context, req *models.SendResetEmailRequest) error {
	return s.sendResetErr
}
func (s *stubAuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return s.resetErr
}
func (s *stubAuthService) Login(ctx context.Context, creds *models.Login) (string, error) {
	return s.loginToken, s.loginErr
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["message"]
}

func TestRegisterCollapsesSecretFailures(t *testing.T) {
	// Not-found, mismatch and expired must be indistinguishable to the
	// client: same status, same message.
	secretErrs := []error{
		services.ErrSecretNotFound,
		services.ErrSecretMismatch,
		services.ErrSecretExpired,
	}

	body := `{"email":"a@x.com","fullName":"A Student","password":"password123","otp":"123456"}`

	var statuses []int
	var messages []string
	for _, serr := range secretErrs {
		h := NewAuthHandler(&stubAuthService{registerErr: serr}, nil)
		rec := postJSON(t, h.Register, body)
		statuses = append(statuses, rec.Code)
		messages = append(messages, messageOf(t, rec))
	}

	for i := 1; i < len(secretErrs); i++ {
		assert.Equal(t, statuses[0], statuses[i])
		assert.Equal(t, messages[0], messages[i])
	}
	assert.Equal(t, http.StatusUnauthorized, statuses[0])
}

func TestRegisterConflictIsDistinct(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{registerErr: services.ErrIdentityConflict}, nil)

	body := `{"email":"a@x.com","fullName":"A Student","password":"password123","otp":"123456"}`
	rec := postJSON(t, h.Register, body)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "An account with this email already exists.", messageOf(t, rec))
}

func TestRegisterSuccess(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	body := `{"email":"a@x.com","fullName":"A Student","password":"password123","otp":"123456"}`
	rec := postJSON(t, h.Register, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResetPasswordCollapsesIdentityNotFound(t *testing.T) {
	// A stale identity parameter reads exactly like a bad token.
	h1 := NewAuthHandler(&stubAuthService{resetErr: services.ErrIdentityNotFound}, nil)
	h2 := NewAuthHandler(&stubAuthService{resetErr: services.ErrSecretNotFound}, nil)

	body := `{"email":"b@x.com","token":"deadbeef","password":"newpassword"}`
	rec1 := postJSON(t, h1.ResetPassword, body)
	rec2 := postJSON(t, h2.ResetPassword, body)

	assert.Equal(t, rec2.Code, rec1.Code)
	assert.Equal(t, messageOf(t, rec2), messageOf(t, rec1))
}

func TestSendOTPDeliveryFailureIsDistinct(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{sendOTPErr: services.ErrDeliveryFailed}, nil)

	rec := postJSON(t, h.SendOTP, `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to send OTP", messageOf(t, rec))
}

func TestSendOTPGenericAcknowledgment(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	rec := postJSON(t, h.SendOTP, `{"email":"whoever@x.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP sent successfully", messageOf(t, rec))
}

func TestLoginUnauthorized(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{loginErr: services.ErrIdentityNotFound}, nil)

	rec := postJSON(t, h.Login, `{"email":"a@x.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedBodyRejected(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil)

	rec := postJSON(t, h.Register, `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

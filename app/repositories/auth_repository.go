package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// AuthResult is what login and OTP verification hand back.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (r *AuthResult) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return fmt.Errorf("%w: token is empty", models.ErrMalformedResponse)
	}
	return r.User.Validate()
}

// Registration is the input of POST /auth/register-vendor-owner.
type Registration struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
}

// AuthRepository covers /auth/*.
type AuthRepository struct {
	api *http.Client
}

func NewAuthRepository(api *http.Client) *AuthRepository {
	return &AuthRepository{api: api}
}

// Login exchanges credentials for a token and user.
func (r *AuthRepository) Login(ctx context.Context, phone, password string) (*AuthResult, error) {
	var out AuthResult
	err := decode(ctx, r.api.Post("/auth/login").
		Body(map[string]string{"phone_number": phone, "password": password}), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterVendorOwner creates an unverified vendor_owner account; an OTP is
// sent to the phone.
func (r *AuthRepository) RegisterVendorOwner(ctx context.Context, in Registration) (Message, error) {
	var out Message
	err := decode(ctx, r.api.Post("/auth/register-vendor-owner").Body(in), &out)
	return out, err
}

// VerifyOTP confirms the registration OTP. The server logs the user in.
func (r *AuthRepository) VerifyOTP(ctx context.Context, phone, otp string) (*AuthResult, error) {
	var out AuthResult
	err := decode(ctx, r.api.Post("/auth/verify-otp").
		Body(map[string]string{"phone_number": phone, "otp": otp}), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AuthRepository) ResendOTP(ctx context.Context, phone string) (Message, error) {
	var out Message
	err := decode(ctx, r.api.Post("/auth/resend-otp").
		Body(map[string]string{"phone_number": phone}), &out)
	return out, err
}

// ForgotPassword asks the server to send a reset OTP.
func (r *AuthRepository) ForgotPassword(ctx context.Context, phone string) (Message, error) {
	var out Message
	err := decode(ctx, r.api.Post("/auth/forgot-password").
		Body(map[string]string{"phone_number": phone}), &out)
	return out, err
}

type resetToken struct {
	ResetToken string `json:"resetToken"`
}

func (t *resetToken) Validate() error {
	if t.ResetToken == "" {
		return fmt.Errorf("%w: resetToken is empty", models.ErrMalformedResponse)
	}
	return nil
}

// VerifyResetOTP trades a reset OTP for a single-use reset token.
func (r *AuthRepository) VerifyResetOTP(ctx context.Context, phone, otp string) (string, error) {
	var out resetToken
	err := decode(ctx, r.api.Post("/auth/verify-reset-otp").
		Body(map[string]string{"phone_number": phone, "otp": otp}), &out)
	return out.ResetToken, err
}

func (r *AuthRepository) ResetPassword(ctx context.Context, token, newPassword string) (Message, error) {
	var out Message
	err := decode(ctx, r.api.Post("/auth/reset-password").
		Body(map[string]string{"resetToken": token, "newPassword": newPassword}), &out)
	return out, err
}

// Profile returns the user the current token belongs to.
func (r *AuthRepository) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := decode(ctx, r.api.Get("/auth/profile"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

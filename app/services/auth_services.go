package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
	"github.com/shashiranjanraj/vendordesk/pkg/validate"
)

type LoginInput struct {
	Phone    string `json:"phone_number" validate:"required,phone"`
	Password string `json:"password"     validate:"required,min=6"`
}

type RegisterInput struct {
	Name     string `json:"name"         validate:"required,min=2,max=80"`
	Phone    string `json:"phone_number" validate:"required,phone"`
	Email    string `json:"email"        validate:"nullable,email"`
	Password string `json:"password"     validate:"required,min=6"`
	Confirm  string `json:"password_confirmation" validate:"required,same=password"`
}

type OTPInput struct {
	Phone string `json:"phone_number" validate:"required,phone"`
	OTP   string `json:"otp"          validate:"required,digits_between=4,6"`
}

type PhoneInput struct {
	Phone string `json:"phone_number" validate:"required,phone"`
}

type ResetInput struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"password"    validate:"required,min=6"`
}

// AuthService signs vendor owners in and out and runs the registration and
// password reset flows. Input is validated before any request is sent. A
// failed login or OTP check never touches an existing session.
type AuthService struct {
	api     AuthAPI
	session Session
	cache   *cache.Cache
}

// NewAuthService wires the service. c may be nil; when set it is flushed on
// logout so no previous vendor's data survives.
func NewAuthService(api AuthAPI, s Session, c *cache.Cache) *AuthService {
	return &AuthService{api: api, session: s, cache: c}
}

// Login authenticates and persists the session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Phone = validate.NormalizePhone(in.Phone)
	if err := inputError(validate.Struct(in)); err != nil {
		return nil, err
	}

	res, err := s.api.Login(ctx, in.Phone, in.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", formError(err))
	}
	if err := s.session.SetAndPersist(ctx, res.User, res.Token); err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	logger.WithCtx(ctx).Info("logged in", "user_id", res.User.ID, "role", res.User.Type)
	return res.User, nil
}

// Logout clears the persisted session and every cached query.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.ClearAndPersist(ctx); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	if s.cache != nil {
		s.cache.Flush()
	}
	return nil
}

// Register creates a vendor_owner account. The server answers with a
// message and sends an OTP to the phone.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Phone = validate.NormalizePhone(in.Phone)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := inputError(validate.Struct(in)); err != nil {
		return "", err
	}

	msg, err := s.api.RegisterVendorOwner(ctx, repositories.Registration{
		Name:        in.Name,
		PhoneNumber: in.Phone,
		Email:       in.Email,
		Password:    in.Password,
	})
	if err != nil {
		return "", fmt.Errorf("auth: register: %w", formError(err))
	}
	return msg.Message, nil
}

// VerifyOTP confirms a registration. The server signs the user in, so the
// returned session is persisted.
func (s *AuthService) VerifyOTP(ctx context.Context, in OTPInput) (*models.User, error) {
	in.Phone = validate.NormalizePhone(in.Phone)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := inputError(validate.Struct(in)); err != nil {
		return nil, err
	}

	res, err := s.api.VerifyOTP(ctx, in.Phone, in.OTP)
	if err != nil {
		return nil, fmt.Errorf("auth: verify otp: %w", formError(err))
	}
	if err := s.session.SetAndPersist(ctx, res.User, res.Token); err != nil {
		return nil, fmt.Errorf("auth: verify otp: %w", err)
	}
	return res.User, nil
}

func (s *AuthService) ResendOTP(ctx context.Context, in PhoneInput) (string, error) {
	in.Phone = validate.NormalizePhone(in.Phone)
	if err := inputError(validate.Struct(in)); err != nil {
		return "", err
	}
	msg, err := s.api.ResendOTP(ctx, in.Phone)
	if err != nil {
		return "", fmt.Errorf("auth: resend otp: %w", formError(err))
	}
	return msg.Message, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, in PhoneInput) (string, error) {
	in.Phone = validate.NormalizePhone(in.Phone)
	if err := inputError(validate.Struct(in)); err != nil {
		return "", err
	}
	msg, err := s.api.ForgotPassword(ctx, in.Phone)
	if err != nil {
		return "", fmt.Errorf("auth: forgot password: %w", formError(err))
	}
	return msg.Message, nil
}

// VerifyResetOTP exchanges the reset OTP for a one-time reset token.
func (s *AuthService) VerifyResetOTP(ctx context.Context, in OTPInput) (string, error) {
	in.Phone = validate.NormalizePhone(in.Phone)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := inputError(validate.Struct(in)); err != nil {
		return "", err
	}
	token, err := s.api.VerifyResetOTP(ctx, in.Phone, in.OTP)
	if err != nil {
		return "", fmt.Errorf("auth: verify reset otp: %w", formError(err))
	}
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetInput) (string, error) {
	if err := inputError(validate.Struct(in)); err != nil {
		return "", err
	}
	msg, err := s.api.ResetPassword(ctx, in.ResetToken, in.NewPassword)
	if err != nil {
		return "", fmt.Errorf("auth: reset password: %w", formError(err))
	}
	return msg.Message, nil
}

// RefreshProfile reloads the signed-in user and stores it with the current
// token. A rejected token is reported as an auth error; the session is left
// for the caller to clear.
func (s *AuthService) RefreshProfile(ctx context.Context) (*models.User, error) {
	token := s.session.Token()
	if token == "" || !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.api.Profile(ctx)
	if err != nil {
		if http.IsAuth(err) {
			logger.WithCtx(ctx).Warn("auth: profile rejected the stored token")
		}
		return nil, fmt.Errorf("auth: profile: %w", err)
	}
	if err := s.session.SetAndPersist(ctx, user, token); err != nil {
		return nil, fmt.Errorf("auth: profile: %w", err)
	}
	return user, nil
}

// RequireSession returns the signed-in user or ErrNotAuthenticated.
func (s *AuthService) RequireSession() (*models.User, error) {
	u := s.session.User()
	if u == nil || !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

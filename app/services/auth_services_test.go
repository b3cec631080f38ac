package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
	"github.com/shashiranjanraj/vendordesk/pkg/session"
)

func TestLoginPersistsSession(t *testing.T) {
	api := &mockAuth{}
	api.On("Login", mock.Anything, "+251911223344", "secret1").
		Return(&repositories.AuthResult{Token: "tok-9", User: vendorOwner()}, nil).Once()

	kv := kvstore.NewMemory()
	store := session.NewStore(kv)
	svc := services.NewAuthService(api, store, nil)

	u, err := svc.Login(ctx, services.LoginInput{Phone: "+251 91-122 3344", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), u.ID)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-9", store.Token())

	tok, err := kv.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-9", tok)
	api.AssertExpectations(t)
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	api := &mockAuth{}
	svc := services.NewAuthService(api, session.NewStore(kvstore.NewMemory()), nil)

	_, err := svc.Login(ctx, services.LoginInput{Phone: "12", Password: "abc"})
	require.ErrorIs(t, err, services.ErrInvalidInput)

	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.Field("phone_number"))
	assert.NotEmpty(t, fe.Field("password"))
	api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	api := &mockAuth{}
	api.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &http.APIError{Kind: http.KindAuth, StatusCode: 401, Message: "Invalid phone number or password"})

	store := signedIn()
	svc := services.NewAuthService(api, store, nil)

	_, err := svc.Login(ctx, services.LoginInput{Phone: "+251911223344", Password: "wrong-pass"})
	require.Error(t, err)
	assert.True(t, http.IsAuth(err))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-1", store.Token())
}

func TestLogoutClearsSessionAndCache(t *testing.T) {
	c := newCache()
	c.Put(cache.Key("orders", "3", 1), "cached")
	store := signedIn()

	svc := services.NewAuthService(&mockAuth{}, store, c)
	require.NoError(t, svc.Logout(ctx))
	assert.False(t, store.IsAuthenticated())
	assert.Zero(t, c.Len())

	require.NoError(t, svc.Logout(ctx), "idempotent")
}

func TestRegisterMapsServerMessageToField(t *testing.T) {
	api := &mockAuth{}
	api.On("RegisterVendorOwner", mock.Anything, mock.Anything).
		Return(repositories.Message{}, &http.APIError{Kind: http.KindBusiness, StatusCode: 409, Message: "Phone number already registered"})

	svc := services.NewAuthService(api, session.NewStore(kvstore.NewMemory()), nil)
	_, err := svc.Register(ctx, services.RegisterInput{
		Name: "Abebe", Phone: "+251911223344", Password: "secret1", Confirm: "secret1",
	})

	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Phone number already registered", fe.Field("phone_number"))
	assert.True(t, http.IsBusiness(err))
}

func TestRegisterUnmappedMessageIsVerbatim(t *testing.T) {
	api := &mockAuth{}
	api.On("RegisterVendorOwner", mock.Anything, mock.Anything).
		Return(repositories.Message{}, &http.APIError{Kind: http.KindBusiness, StatusCode: 409, Message: "Registrations are closed"})

	svc := services.NewAuthService(api, session.NewStore(kvstore.NewMemory()), nil)
	_, err := svc.Register(ctx, services.RegisterInput{
		Name: "Abebe", Phone: "+251911223344", Password: "secret1", Confirm: "secret1",
	})

	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Registrations are closed", fe.Message)
	assert.Empty(t, fe.Fields)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svc := services.NewAuthService(&mockAuth{}, session.NewStore(kvstore.NewMemory()), nil)
	_, err := svc.Register(ctx, services.RegisterInput{
		Name: "Abebe", Phone: "+251911223344", Password: "secret1", Confirm: "secret2",
	})
	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.Field("password_confirmation"))
}

func TestVerifyOTP(t *testing.T) {
	api := &mockAuth{}
	api.On("VerifyOTP", mock.Anything, "+251911223344", "1234").
		Return(&repositories.AuthResult{Token: "tok-2", User: vendorOwner()}, nil)
	store := session.NewStore(kvstore.NewMemory())
	svc := services.NewAuthService(api, store, nil)

	_, err := svc.VerifyOTP(ctx, services.OTPInput{Phone: "+251911223344", OTP: "12"})
	require.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.VerifyOTP(ctx, services.OTPInput{Phone: "+251911223344", OTP: " 1234 "})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", store.Token())
}

func TestInvalidOTPMapsToOTPField(t *testing.T) {
	api := &mockAuth{}
	api.On("VerifyOTP", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &http.APIError{Kind: http.KindValidation, StatusCode: 400, Message: "Invalid or expired OTP"})
	svc := services.NewAuthService(api, session.NewStore(kvstore.NewMemory()), nil)

	_, err := svc.VerifyOTP(ctx, services.OTPInput{Phone: "+251911223344", OTP: "9999"})
	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Invalid or expired OTP", fe.Field("otp"))
}

func TestPasswordResetFlow(t *testing.T) {
	api := &mockAuth{}
	api.On("ForgotPassword", mock.Anything, "+251911223344").Return(repositories.Message{Message: "OTP sent"}, nil)
	api.On("VerifyResetOTP", mock.Anything, "+251911223344", "4321").Return("reset-1", nil)
	api.On("ResetPassword", mock.Anything, "reset-1", "newsecret").Return(repositories.Message{Message: "Password reset"}, nil)
	svc := services.NewAuthService(api, session.NewStore(kvstore.NewMemory()), nil)

	msg, err := svc.ForgotPassword(ctx, services.PhoneInput{Phone: "+251911223344"})
	require.NoError(t, err)
	assert.Equal(t, "OTP sent", msg)

	tok, err := svc.VerifyResetOTP(ctx, services.OTPInput{Phone: "+251911223344", OTP: "4321"})
	require.NoError(t, err)

	msg, err = svc.ResetPassword(ctx, services.ResetInput{ResetToken: tok, NewPassword: "newsecret"})
	require.NoError(t, err)
	assert.Equal(t, "Password reset", msg)
	api.AssertExpectations(t)
}

func TestRefreshProfileKeepsToken(t *testing.T) {
	updated := vendorOwner()
	updated.Name = "Abebe Kebede"
	api := &mockAuth{}
	api.On("Profile", mock.Anything).Return(updated, nil)

	store := signedIn()
	svc := services.NewAuthService(api, store, nil)
	u, err := svc.RefreshProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Abebe Kebede", u.Name)
	assert.Equal(t, "Abebe Kebede", store.User().Name)
	assert.Equal(t, "tok-1", store.Token())
}

func TestRefreshProfileRequiresSession(t *testing.T) {
	svc := services.NewAuthService(&mockAuth{}, session.NewStore(kvstore.NewMemory()), nil)
	_, err := svc.RefreshProfile(ctx)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
}

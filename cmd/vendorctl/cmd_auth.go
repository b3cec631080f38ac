package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
	"github.com/shashiranjanraj/vendordesk/pkg/auth"
)

// readSecret returns flagValue, or the first line of in when it is empty.
func readSecret(in io.Reader, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

// vendorctl login --phone +2519... [--password ...]
func (a *app) loginCmd() *cobra.Command {
	var phone, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with phone number and password",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		user, err := k.Auth.Login(ctx, services.LoginInput{
			Phone:    phone,
			Password: readSecret(cmd.InOrStdin(), password),
		})
		if err != nil {
			return err
		}
		text := okStyle.Render("Signed in") + " as " + user.Name + " (" + user.PhoneNumber + ")"
		if user.IsVendorOwner() {
			g, err := k.Vendors.Gate(ctx)
			if err != nil {
				return err
			}
			text += "\n" + gateView(g)
		}
		return a.print(user, text)
	})
	cmd.Flags().StringVar(&phone, "phone", "", "phone number, e.g. +251911223344")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		if err := k.Auth.Logout(ctx); err != nil {
			return err
		}
		a.say("Signed out.")
		return nil
	})
	return cmd
}

type whoami struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone_number"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// whoami reads the stored session; --refresh asks the server first.
func (a *app) whoamiCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		user, err := k.Auth.RequireSession()
		if err != nil {
			return err
		}
		if refresh {
			if user, err = k.Auth.RefreshProfile(ctx); err != nil {
				return err
			}
		}

		w := whoami{UserID: user.ID.String(), Name: user.Name, Phone: user.PhoneNumber, Role: string(user.Type)}
		pairs := [][2]string{{"User", w.UserID}, {"Name", w.Name}, {"Phone", w.Phone}, {"Role", w.Role}}
		// The token is opaque to the client; the expiry is shown, never enforced.
		if claims, err := auth.Peek(k.Session.Token()); err == nil && claims.ExpiresAt != nil {
			w.ExpiresAt = claims.ExpiresAtTime()
			exp := dateOf(w.ExpiresAt)
			if claims.Expired(time.Now()) {
				exp = warnStyle.Render(exp + " (expired)")
			}
			pairs = append(pairs, [2]string{"Token expires", exp})
		}
		return a.print(w, fields(pairs...))
	})
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the server")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var in services.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; a one-time code is sent by SMS",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		if in.Confirm == "" {
			in.Confirm = in.Password
		}
		msg, err := k.Auth.Register(ctx, in)
		if err != nil {
			return err
		}
		a.say("%s\nNext: vendorctl verify-otp --phone %s --otp <code>", msg, in.Phone)
		return nil
	})
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Email, "email", "", "email (optional)")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Confirm, "confirm", "", "password confirmation (defaults to --password)")
	return cmd
}

func (a *app) verifyOTPCmd() *cobra.Command {
	var in services.OTPInput
	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Confirm a phone number and sign in",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		user, err := k.Auth.VerifyOTP(ctx, in)
		if err != nil {
			return err
		}
		return a.print(user, okStyle.Render("Phone verified.")+" Signed in as "+user.Name)
	})
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.OTP, "otp", "", "code from the SMS")
	return cmd
}

func (a *app) resendOTPCmd() *cobra.Command {
	var in services.PhoneInput
	cmd := &cobra.Command{
		Use:   "resend-otp",
		Short: "Send the verification code again",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		msg, err := k.Auth.ResendOTP(ctx, in)
		if err != nil {
			return err
		}
		a.say("%s", msg)
		return nil
	})
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	return cmd
}

// vendorctl password forgot|verify|reset
func (a *app) passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset a forgotten password",
	}

	var forgot services.PhoneInput
	forgotCmd := &cobra.Command{Use: "forgot", Short: "Send a reset code to the phone number"}
	forgotCmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		msg, err := k.Auth.ForgotPassword(ctx, forgot)
		if err != nil {
			return err
		}
		a.say("%s\nNext: vendorctl password verify --phone %s --otp <code>", msg, forgot.Phone)
		return nil
	})
	forgotCmd.Flags().StringVar(&forgot.Phone, "phone", "", "phone number")

	var verify services.OTPInput
	verifyCmd := &cobra.Command{Use: "verify", Short: "Exchange the reset code for a reset token"}
	verifyCmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		token, err := k.Auth.VerifyResetOTP(ctx, verify)
		if err != nil {
			return err
		}
		return a.print(map[string]string{"reset_token": token},
			fmt.Sprintf("Reset token: %s\nNext: vendorctl password reset --token %s --password <new>", token, token))
	})
	verifyCmd.Flags().StringVar(&verify.Phone, "phone", "", "phone number")
	verifyCmd.Flags().StringVar(&verify.OTP, "otp", "", "code from the SMS")

	var reset services.ResetInput
	resetCmd := &cobra.Command{Use: "reset", Short: "Set a new password"}
	resetCmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		msg, err := k.Auth.ResetPassword(ctx, reset)
		if err != nil {
			return err
		}
		a.say("%s", msg)
		return nil
	})
	resetCmd.Flags().StringVar(&reset.ResetToken, "token", "", "reset token from `password verify`")
	resetCmd.Flags().StringVar(&reset.NewPassword, "password", "", "new password")

	cmd.AddCommand(forgotCmd, verifyCmd, resetCmd)
	return cmd
}

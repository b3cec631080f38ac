package validate_test

import (
	"errors"
	"testing"

	"github.com/shashiranjanraj/vendordesk/pkg/validate"
)

type registerInput struct {
	Name            string  `json:"name"             validate:"required,min=2,max=50"`
	Phone           string  `json:"phone_number"     validate:"required,phone"`
	Email           string  `json:"email"            validate:"nullable,email"`
	Password        string  `json:"password"         validate:"required,min=6"`
	ConfirmPassword string  `json:"confirm_password" validate:"same=password"`
	Type            string  `json:"type"             validate:"required,in=individual,business"`
	OTP             string  `json:"otp"              validate:"nullable,digits_between=4,6"`
	Price           float64 `json:"price"            validate:"nullable,gt=0"`
}

func valid() registerInput {
	return registerInput{
		Name:            "Abebe",
		Phone:           "+251911223344",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Type:            "business",
	}
}

func TestValidInput(t *testing.T) {
	if errs := validate.Struct(valid()); errs != nil {
		t.Errorf("expected no errors, got: %v", errs)
	}
	if err := validate.Check(valid()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	for _, field := range []string{"name", "phone_number", "password", "type"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
	if _, ok := errs["email"]; ok {
		t.Error("nullable email should be skipped when empty")
	}
}

func TestPhoneRule(t *testing.T) {
	in := valid()
	in.Phone = "+251 91-122 3344"
	if errs := validate.Struct(in); errs != nil {
		t.Errorf("formatted phone should pass, got %v", errs)
	}

	in.Phone = "12ab"
	if _, ok := validate.Struct(in)["phone_number"]; !ok {
		t.Error("expected phone error")
	}
}

func TestSameAndIn(t *testing.T) {
	in := valid()
	in.ConfirmPassword = "other"
	in.Type = "corporation"
	errs := validate.Struct(in)
	if _, ok := errs["confirm_password"]; !ok {
		t.Error("expected confirm_password mismatch")
	}
	if _, ok := errs["type"]; !ok {
		t.Error("expected type to be rejected")
	}
}

func TestDigitsBetween(t *testing.T) {
	in := valid()
	for otp, ok := range map[string]bool{"1234": true, "123456": true, "123": false, "12a4": false, "1234567": false} {
		in.OTP = otp
		_, failed := validate.Struct(in)["otp"]
		if failed == ok {
			t.Errorf("otp %q: expected ok=%v", otp, ok)
		}
	}
}

func TestErrorsIsAnError(t *testing.T) {
	err := validate.Check(registerInput{})
	var fields validate.Errors
	if !errors.As(err, &fields) {
		t.Fatalf("expected validate.Errors, got %T", err)
	}
	if fields["name"] == "" {
		t.Error("expected name message")
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := validate.NormalizePhone(" +251 (91) 122-3344 "); got != "+251911223344" {
		t.Errorf("got %q", got)
	}
}

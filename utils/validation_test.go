package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sampleRequest struct {
	Email  string `validate:"required,email"`
	Points int    `validate:"gt=0"`
	Name   string `validate:"required,min=3"`
}

func TestSanitizeValidationErrorMessages(t *testing.T) {
	v := validator.New()

	err := v.Struct(sampleRequest{Email: "not-an-email", Points: 0, Name: "ab"})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "email must be a valid email address") {
		t.Errorf("expected email message, got %q", msg)
	}
	if !strings.Contains(msg, "points must be greater than 0") {
		t.Errorf("expected points message, got %q", msg)
	}
	if !strings.Contains(msg, "name must be at least 3") {
		t.Errorf("expected name message, got %q", msg)
	}
	// Must not leak Go struct names
	if strings.Contains(msg, "sampleRequest") {
		t.Errorf("message leaks struct name: %q", msg)
	}
}

func TestSanitizeValidationErrorNonValidator(t *testing.T) {
	msg := SanitizeValidationError(errors.New("unexpected EOF"))
	if msg != "Invalid request body" {
		t.Errorf("expected generic message, got %q", msg)
	}
}

func TestSanitizeValidationErrorNil(t *testing.T) {
	if msg := SanitizeValidationError(nil); msg != "" {
		t.Errorf("expected empty message for nil error, got %q", msg)
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("value", "field"); err != nil {
		t.Errorf("expected nil for non-empty value, got %v", err)
	}
	if err := ValidateNotEmpty("   ", "notes"); err == nil {
		t.Error("expected error for whitespace-only value")
	}
	if err := ValidateNotEmpty("", "notes"); err == nil {
		t.Error("expected error for empty value")
	}
}

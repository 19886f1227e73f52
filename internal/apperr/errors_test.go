package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorIs(t *testing.T) {
	err := fmt.Errorf("add contact: %w", Invalid("stage", "must be a valid value"))
	if !errors.Is(err, ErrValidation) {
		t.Fatal("wrapped validation error should match ErrValidation")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("validation error must not match ErrNotFound")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "stage" {
		t.Errorf("errors.As field = %+v", ve)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	if got := Invalid("", "empty patch").Error(); got != "validation: empty patch" {
		t.Errorf("message = %q", got)
	}
	if got := Invalid("name", "cannot be blank").Error(); got != "validation: name: cannot be blank" {
		t.Errorf("message = %q", got)
	}
}

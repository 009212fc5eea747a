package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type registrationInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin team_member guest"`
}

func TestValidateStructPasses(t *testing.T) {
	input := registrationInput{
		Email:    "guest@example.com",
		Password: "secret1",
		Role:     "guest",
	}
	if err := ValidateStruct(input); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(registrationInput{Password: "x"})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	var sawEmail, sawPassword bool
	for _, failure := range failures {
		switch failure.Field {
		case "email":
			sawEmail = true
		case "password":
			sawPassword = true
		}
	}
	if !sawEmail || !sawPassword {
		t.Fatalf("expected email and password failures, got %v", failures)
	}

	if !strings.Contains(err.Error(), "password failed on min=6") {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestRegisterValidationInstallsCustomRule(t *testing.T) {
	err := RegisterValidation("apartguide", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "apartguide"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"apartguide"`
	}

	if err := ValidateStruct(custom{Value: "apartguide"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}

package account

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpggio/stepwise/internal/domain/catalog"
)

const minPasswordLength = 6

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return catalog.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return catalog.Difficulty(fl.Field().String()).Valid()
	})
	return v
}

type signupInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6"`
}

type profileInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Username string `json:"username" validate:"required,min=3,max=20"`
}

type preferencesInput struct {
	SkillGoals           []catalog.Category `json:"skillGoals" validate:"dive,category"`
	DifficultyPreference catalog.Difficulty `json:"difficultyPreference" validate:"difficulty"`
	AvailableTime        int                `json:"availableTime" validate:"min=5,max=300"`
}

func validateStruct(input any) error {
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return inputError(fieldErrs[0])
		}
		return fmt.Errorf("validating input: %w", err)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &InputError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	return nil
}

func inputError(fe validator.FieldError) *InputError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return &InputError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	case "min":
		return &InputError{Field: field, Message: fmt.Sprintf("%s must be at least %s characters", field, fe.Param())}
	case "max":
		return &InputError{Field: field, Message: fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())}
	}
	if field == "availableTime" {
		return &InputError{Field: field, Message: "availableTime must be between 5 and 300 minutes"}
	}
	return &InputError{Field: field, Message: fmt.Sprintf("%s %v is not valid", field, fe.Value())}
}

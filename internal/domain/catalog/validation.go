package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

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
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return Difficulty(fl.Field().String()).Valid()
	})
	return v
}

// ValidateActivity checks an activity before it is written. Steps are checked
// in order and the first failing step is reported by its 1-based index.
func ValidateActivity(act *Activity) error {
	if act == nil {
		return ErrInvalidInput
	}

	if err := validate.Struct(act); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return fmt.Errorf("validating activity: %w", err)
	}

	if len(act.Steps) == 0 {
		return &ValidationError{Field: "steps", Message: "activity must have at least one step"}
	}

	for i, step := range act.Steps {
		index := i + 1
		if strings.TrimSpace(step.Title) == "" {
			return &ValidationError{Field: "title", StepIndex: index, Message: fmt.Sprintf("step %d title is required", index)}
		}
		if strings.TrimSpace(step.Description) == "" {
			return &ValidationError{Field: "description", StepIndex: index, Message: fmt.Sprintf("step %d description is required", index)}
		}
		if len(step.Tips) == 0 {
			return &ValidationError{Field: "tips", StepIndex: index, Message: fmt.Sprintf("step %d needs at least one tip", index)}
		}
		for _, tip := range step.Tips {
			if strings.TrimSpace(tip) == "" {
				return &ValidationError{Field: "tips", StepIndex: index, Message: fmt.Sprintf("step %d has empty tips", index)}
			}
		}
	}

	return nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	var msg string
	switch {
	case field == "estimatedTime":
		msg = "estimatedTime must be between 5 and 300 minutes"
	case fe.Tag() == "required":
		msg = fmt.Sprintf("%s is required", field)
	case fe.Tag() == "max":
		msg = fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
	case fe.Tag() == "category", fe.Tag() == "difficulty":
		msg = fmt.Sprintf("%s %q is not valid", field, fmt.Sprint(fe.Value()))
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return &ValidationError{Field: field, Message: msg}
}

// normalizeSteps trims text fields and assigns contiguous step numbers starting at 1.
func normalizeSteps(steps []Step) []Step {
	out := make([]Step, 0, len(steps))
	for i, step := range steps {
		step.StepNumber = i + 1
		step.Title = strings.TrimSpace(step.Title)
		step.Description = strings.TrimSpace(step.Description)
		if step.EstimatedDuration <= 0 {
			step.EstimatedDuration = DefaultStepDuration
		}
		if step.VideoURL != nil {
			url := strings.TrimSpace(*step.VideoURL)
			if url == "" {
				step.VideoURL = nil
			} else {
				step.VideoURL = &url
			}
		}
		tips := make([]string, len(step.Tips))
		for j, tip := range step.Tips {
			tips[j] = strings.TrimSpace(tip)
		}
		step.Tips = tips
		out = append(out, step)
	}
	return out
}

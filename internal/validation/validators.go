package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/types/activity"
	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/internal/types/contact"
)

var (
	// Validate is the shared validator with the enum rules registered.
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report fields by their JSON names, which is what callers send.
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"frequency":        validateFrequency,
		"importance":       validateImportance,
		"priority":         validatePriority,
		"activity_type":    validateActivityType,
		"interaction_type": validateInteractionType,
	}
	for tag, fn := range rules {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

// Struct validates v and converts failures into a Validation error naming
// the offending fields the way the callers send them.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Validation("Invalid request")
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("Invalid %s", fe.Field()))
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

func validateFrequency(fl validator.FieldLevel) bool {
	return chore.Frequency(fl.Field().String()).Valid()
}

func validateImportance(fl validator.FieldLevel) bool {
	return chore.Importance(fl.Field().String()).Valid()
}

func validatePriority(fl validator.FieldLevel) bool {
	return contact.Priority(fl.Field().String()).Rank() > 0
}

func validateActivityType(fl validator.FieldLevel) bool {
	switch activity.Type(fl.Field().String()) {
	case activity.TypeWorkout, activity.TypeOutdoor:
		return true
	}
	return false
}

func validateInteractionType(fl validator.FieldLevel) bool {
	switch contact.InteractionType(fl.Field().String()) {
	case contact.InteractionCall, contact.InteractionText:
		return true
	}
	return false
}

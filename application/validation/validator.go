// Package validation validates actions and configuration structs using
// struct tags.
package validation

import (
	stdErrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` tags. The first failing field is
// reported as an *errors.ValidationError.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ValidationError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed on '%s' rule (value: %v)", fe.Tag(), fe.Value()),
		}
	}
	return &errors.ValidationError{Err: err}
}

// Action validates a portal action before it is dispatched.
func Action(a entities.Action) error {
	return Struct(a)
}

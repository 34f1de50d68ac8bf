package service

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

// newValidator adds notblank, which rejects whitespace-only names that would be
// stored empty once trimmed.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateRequest checks the validate tags of a request message. Failures are
// InvalidArgument errors listing each field and the rule it broke.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return connect.NewError(connect.CodeInternal, err)
	}

	problems := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		if fe.Param() != "" {
			problems[i] = fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			problems[i] = fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
		}
	}
	return connect.NewError(connect.CodeInvalidArgument,
		fmt.Errorf("invalid request: %s", strings.Join(problems, "; ")))
}

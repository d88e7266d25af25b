package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"blogdesk/internal/errors"
)

// fieldRule maps a failed validation on a struct field to a user readable message.
// An empty tag matches any failed tag on the field.
type fieldRule struct {
	field   string
	tag     string
	message string
}

const invalidBody = "Invalid request body"

// validationMessage returns the message of the first rule, in rule order,
// matched by a field error in err.
func validationMessage(err error, rules []fieldRule) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return invalidBody
	}
	for _, rule := range rules {
		for _, fe := range verrs {
			if fe.StructField() == rule.field && (rule.tag == "" || fe.Tag() == rule.tag) {
				return rule.message
			}
		}
	}
	return invalidBody
}

// bindAndValidate decodes the request body into req, lets normalize adjust it,
// then validates it. Failures are returned as validation errors.
func bindAndValidate(c echo.Context, req any, normalize func(), rules []fieldRule) error {
	if err := c.Bind(req); err != nil {
		return errors.Validation(invalidBody)
	}
	if normalize != nil {
		normalize()
	}
	if err := c.Validate(req); err != nil {
		return errors.Validation(validationMessage(err, rules))
	}
	return nil
}

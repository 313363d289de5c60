package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

var validate = newValidator()

// newValidator reports fields by their json names so errors read the same
// as the request the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns the first validator failure into a ValidationError.
// teamType names the category when the failing struct is a team variant.
func validationError(err error, teamType TeamType) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}

	fe := errs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
		if teamType != "" {
			reason = fmt.Sprintf("is required for %s teams", teamType)
		}
	case "gt":
		reason = "must be a positive number"
	case "oneof":
		reason = fmt.Sprintf("has unknown value %q", fmt.Sprint(fe.Value()))
	default:
		reason = fmt.Sprintf("failed the %s check", fe.Tag())
	}
	return invalid(fe.Field(), reason)
}

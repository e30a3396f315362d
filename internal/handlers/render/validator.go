package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	fieldvalidate "github.com/akovalyov/inkwell/internal/service/validate"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("username", validateUsername)
	_ = validate.RegisterValidation("password", validatePasswordStrength)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func validateUsername(fl validator.FieldLevel) bool {
	return fieldvalidate.Username(fl.Field().String()) == nil
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return fieldvalidate.Password(fl.Field().String()) == nil
}

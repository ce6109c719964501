package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	// letters (any script), digits, spaces, dots, hyphens, apostrophes
	personNameRe = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_\s.\-']+$`)
)

// AllowedMediums lists the accepted exam mediums.
var AllowedMediums = []string{"Hindi", "English"}

// AllowedCourses lists the accepted courses.
var AllowedCourses = []string{
	"Engineering (JEE)",
	"Medical (NEET)",
	"Foundation (Class 6-10)",
}

func newValidator() *validator.Validate {
	v := validator.New()

	// report json field names instead of Go struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("medium", oneOfList(AllowedMediums))
	_ = v.RegisterValidation("course", oneOfList(AllowedCourses))

	return v
}

func oneOfList(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validationErrors {
			errors[err.Field()] = getErrorMessage(err)
		}
	}

	return errors
}

// converts validator errors to human-readable messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", err.Param())
	case "numeric":
		return "Must contain digits only"
	case "personname":
		return "Only letters, spaces, dots, hyphens and apostrophes are allowed"
	case "medium":
		return fmt.Sprintf("Must be one of: %s", strings.Join(AllowedMediums, ", "))
	case "course":
		return fmt.Sprintf("Must be one of: %s", strings.Join(AllowedCourses, ", "))
	case "gt":
		return fmt.Sprintf("Must be greater than %s", err.Param())
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// formats validation errors map into single string
func FormatValidationErrors(errors map[string]string) string {
	var msgs []string
	for field, msg := range errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// usernameRe matches the allowed account-name alphabet: letters, digits and
// the @ . + - _ characters.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9@.+\-_]+$`)

// Init configures the global validator used by Gin's binding.
// - Uses form tag names in errors.
// - Registers the username charset rule and the password-policy alias.
func Init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	// Password strength stays delegated to this alias; handlers never
	// hard-code the policy.
	v.RegisterAlias("pwd", "min=8")
}

// ToDetails converts validation/binding errors into a map[field]message
// suitable for form redisplay.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid payload"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a well-formed URL"
	case "username":
		return "may contain only letters, digits and @ . + - _"
	case "max":
		return "must be at most " + param + " characters long"
	case "min":
		return "must be at least " + param + " characters long"
	case "eqfield":
		return "must match " + strings.ToLower(param)
	case "pwd":
		return "must be at least 8 characters long"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("failed '%s'", fe.Tag())
	}
}

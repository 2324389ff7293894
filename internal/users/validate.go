package users

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nicknamePattern = regexp.MustCompile(`^[가-힣a-zA-Z]{2,10}$`)
)

// ValidationError maps each invalid field to a message.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", f, e.Errors[f]))
	}
	return "validation failed: " + strings.Join(messages, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("signup_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
		return nicknamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("signup_password", func(fl validator.FieldLevel) bool {
		return validPassword(fl.Field().String())
	})

	return v
}

// validPassword requires six or more ASCII letters and digits with at
// least one of each.
func validPassword(p string) bool {
	if len(p) < 6 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		default:
			return false
		}
	}
	return letter && digit
}

// ValidateSignup checks a signup form before anything is sent.
func ValidateSignup(form SignupForm) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Errors: out}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "signup_email":
		return "enter a valid email address"
	case "nickname":
		return "nickname must be 2-10 Korean or English letters"
	case "signup_password":
		return "password must be at least 6 characters and contain both letters and numbers"
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

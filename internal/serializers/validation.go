package serializers

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NonFieldErrors is the key for errors that span several fields.
const NonFieldErrors = "non_field_errors"

// ValidationErrors maps a field name to its messages.
type ValidationErrors map[string][]string

func (e ValidationErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e ValidationErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e ValidationErrors) Any() bool {
	return len(e) > 0
}

// Merge copies other into e.
func (e ValidationErrors) Merge(other ValidationErrors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkStruct runs the struct tag rules of s and returns readable messages.
func checkStruct(s interface{}) ValidationErrors {
	errs := ValidationErrors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add(NonFieldErrors, err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fieldKey(fe), formatFieldError(fe))
	}
	return errs
}

func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Ensure this field has at least %s elements.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "url", "http_url":
		return "Enter a valid URL."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	default:
		return fmt.Sprintf("Invalid value for %s.", fe.Field())
	}
}

// ValidateName trims value, requires at least two characters and returns
// it title-cased.
func ValidateName(value string) (string, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) < 2 {
		return "", fieldError("Name must be at least 2 characters long.")
	}
	return cases.Title(language.Und).String(value), nil
}

// ValidateEmail trims and lowercases value, which must contain "@".
func ValidateEmail(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if !strings.Contains(value, "@") {
		return "", fieldError("Please provide a valid email address.")
	}
	return value, nil
}

func ValidateSubject(value string) (string, error) {
	return minLength(value, 5, "Subject must be at least 5 characters long.")
}

func ValidateMessage(value string) (string, error) {
	return minLength(value, 10, "Message must be at least 10 characters long.")
}

func ValidateCoverLetter(value string) (string, error) {
	return minLength(value, 10, "Cover letter must be at least 10 characters long.")
}

// ValidateResumeSource requires an uploaded file or a link.
func ValidateResumeSource(hasFile bool, link string) error {
	if !hasFile && strings.TrimSpace(link) == "" {
		return fieldError("Either a resume file or a link to a resume must be provided.")
	}
	return nil
}

func minLength(value string, n int, msg string) (string, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) < n {
		return "", fieldError(msg)
	}
	return value, nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

// apply runs fn on *value unless field already failed, storing the cleaned
// value or the error.
func apply(errs ValidationErrors, field string, value *string, fn func(string) (string, error)) {
	if errs.Has(field) {
		return
	}
	cleaned, err := fn(*value)
	if err != nil {
		errs.Add(field, err.Error())
		return
	}
	*value = cleaned
}

// trimAll trims surrounding whitespace of every string field.
func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

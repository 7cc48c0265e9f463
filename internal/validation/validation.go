package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"letsconnect/internal/models"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"
)

var (
	validate    = newValidator()
	objectIDPat = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// enumTags map custom tags to the allowed values they accept.
var enumTags = map[string][]string{
	"postcategory":    models.PostCategories,
	"mediatype":       models.PostMediaTypes,
	"gallerycategory": models.GalleryCategories,
	"newstype":        models.GalleryNewsTypes,
	"gender":          models.UserGenders,
	"role":            models.UserRoles,
	"notiftype":       models.NotificationTypes,
	"reportreason":    models.ReportReasons,
	"reportstatus":    models.ReportStatuses,
}

func newValidator() *validator.Validate {
	v := validator.New()

	// report the json name of a field instead of the Go name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	for tag, allowed := range enumTags {
		allowed := allowed
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return slices.Contains(allowed, fl.Field().String())
		})
	}
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectIDPat.MatchString(fl.Field().String())
	})
	return v
}

// FieldError is a single failed constraint
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Errors collects every failed constraint of a struct
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first failed field
func (e *Errors) First() string {
	if len(e.Fields) == 0 {
		return "Invalid input"
	}
	return e.Fields[0].Message
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := &Errors{Fields: make([]FieldError, 0, len(ve))}
	for _, e := range ve {
		out.Fields = append(out.Fields, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}
	return out
}

// IsObjectID reports whether id is a 24-char hex document id
func IsObjectID(id string) bool {
	return objectIDPat.MatchString(id)
}

func message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please Enter a Valid Email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "objectid", "uuid", "uuid4":
		return fmt.Sprintf("Invalid %s", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	}
	if allowed, ok := enumTags[e.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", "))
	}
	return fmt.Sprintf("field '%s' failed validation: %s", field, e.Tag())
}

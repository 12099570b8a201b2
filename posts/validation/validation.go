package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	postsErrors "github.com/qolzam/devconnector/posts/errors"
	"github.com/qolzam/devconnector/posts/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "schema"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// FieldErrors maps a JSON field name to a human-readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, f[k])
	}
	return strings.Join(parts, "; ")
}

// Fields returns the per-field messages.
func (f FieldErrors) Fields() map[string]string {
	return f
}

// ValidateCreatePostRequest validates the create post request
func ValidateCreatePostRequest(req *models.CreatePostRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", postsErrors.ErrValidationFailed)
	}
	return check(req)
}

// ValidateAddCommentRequest validates the add comment request
func ValidateAddCommentRequest(req *models.AddCommentRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", postsErrors.ErrValidationFailed)
	}
	return check(req)
}

// ValidateListPostsQuery validates the list filters
func ValidateListPostsQuery(q *models.ListPostsQuery) error {
	if q == nil {
		return nil
	}
	return check(q)
}

func check(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", postsErrors.ErrValidationFailed, err)
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fmt.Errorf("%w: %w", postsErrors.ErrValidationFailed, fields)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s field is required", field)
	case "min", "max":
		if field == "text" {
			return "text must be between 10 and 300 characters"
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 1000", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

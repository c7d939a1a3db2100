package tag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("tag_category", validateCategory); err != nil {
		panic(fmt.Sprintf("failed to register tag_category validator: %v", err))
	}
}

func validateCategory(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).Valid()
}

// Validate checks that t has an id, a non-blank label and a known category.
func Validate(t Tag) error {
	if strings.TrimSpace(t.Label) == "" {
		return errors.New("tag: label is required")
	}
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return fmt.Errorf("tag: %s failed %q validation", strings.ToLower(f.Field()), f.Tag())
	}
	return fmt.Errorf("tag: %w", err)
}

package chain

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation constants
var (
	MinNameLength = 3
	MaxNameLength = 100

	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// validate is a singleton validator instance
var validate *validator.Validate

// draftRules carries the tag-checkable subset of the draft. The color
// format needs exactly six hex digits, stricter than the stock hexcolor
// tag, so it stays a regexp check in Validate.
type draftRules struct {
	Name  string `validate:"required,min=3,max=100"`
	Color string `validate:"required"`
}

func init() {
	validate = validator.New()
}

// Validate runs the pre-save checks on the draft: name length and color
// format. It returns the first failure as a ValidationError whose message
// is surfaced verbatim to the user. Steps are never validated here; empty
// notes and absent branch descriptions are legal.
func (d *Draft) Validate() error {
	if err := validate.Struct(&draftRules{Name: d.Name, Color: d.Color}); err != nil {
		return formatValidationError(err)
	}
	if !colorPattern.MatchString(d.Color) {
		return NewValidationError("invalid color format")
	}
	return nil
}

// formatValidationError converts validator errors to the messages the
// editor surfaces
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		switch e.Field() {
		case "Name":
			switch e.Tag() {
			case "max":
				return NewValidationError("name too long")
			default:
				return NewValidationError("name too short")
			}
		case "Color":
			return NewValidationError("invalid color format")
		}
	}
	return err
}

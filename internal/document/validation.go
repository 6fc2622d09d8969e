package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldConstraint describes the rules a single document field must satisfy.
type FieldConstraint struct {
	Field     string
	Required  bool
	MaxLength int
	Enum      []string
}

const TitleMaxLength = 200

var (
	TitleConstraint    = FieldConstraint{Field: "title", Required: true, MaxLength: TitleMaxLength}
	ContentConstraint  = FieldConstraint{Field: "content", Required: true}
	AuthorIDConstraint = FieldConstraint{Field: "authorId", Required: true}
	StatusConstraint   = FieldConstraint{Field: "status", Enum: statusNames()}
)

func statusNames() []string {
	out := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		out = append(out, string(s))
	}
	return out
}

// Check returns the violations of value against c. value is expected to be
// trimmed already.
func (c FieldConstraint) Check(value string) []FieldError {
	var errs []FieldError
	if value == "" {
		if c.Required {
			errs = append(errs, FieldError{Field: c.Field, Message: c.Field + " should not be empty"})
		}
		return errs
	}
	if c.MaxLength > 0 && utf8.RuneCountInString(value) > c.MaxLength {
		errs = append(errs, FieldError{
			Field:   c.Field,
			Message: fmt.Sprintf("%s must be shorter than or equal to %d characters", c.Field, c.MaxLength),
		})
	}
	if len(c.Enum) > 0 && !contains(c.Enum, value) {
		errs = append(errs, FieldError{
			Field:   c.Field,
			Message: fmt.Sprintf("%s must be one of the following values: %s", c.Field, strings.Join(c.Enum, ", ")),
		})
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Normalize trims the text fields and applies the default status.
func (in CreateInput) Normalize() CreateInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.AuthorID = strings.TrimSpace(in.AuthorID)
	if in.Status == "" {
		in.Status = StatusDraft
	}
	return in
}

// Normalize trims the provided text fields.
func (in UpdateInput) Normalize() UpdateInput {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		in.Content = &c
	}
	return in
}

// ValidateCreate checks a normalized CreateInput and returns nil or a
// *ValidationError listing every violated field.
func ValidateCreate(in CreateInput) error {
	var errs []FieldError
	errs = append(errs, TitleConstraint.Check(in.Title)...)
	errs = append(errs, ContentConstraint.Check(in.Content)...)
	errs = append(errs, AuthorIDConstraint.Check(in.AuthorID)...)
	errs = append(errs, StatusConstraint.Check(string(in.Status))...)
	return newValidationError(errs)
}

// ValidateUpdate checks the provided fields of a normalized UpdateInput.
// Provided fields obey the same rules as on create: a present title or
// content may not be empty.
func ValidateUpdate(in UpdateInput) error {
	var errs []FieldError
	if in.Title != nil {
		errs = append(errs, TitleConstraint.Check(*in.Title)...)
	}
	if in.Content != nil {
		errs = append(errs, ContentConstraint.Check(*in.Content)...)
	}
	if in.Status != nil {
		if *in.Status == "" {
			errs = append(errs, FieldError{Field: "status", Message: "status should not be empty"})
		} else {
			errs = append(errs, StatusConstraint.Check(string(*in.Status))...)
		}
	}
	return newValidationError(errs)
}

func newValidationError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

package forms

import (
	"errors"
	"strings"

	"github.com/ghaggin/growtech/internal/model"
	"github.com/go-playground/validator/v10"
)

// Field order matters: the first failing field, in declaration order, is
// the one reported.

type Login struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"min=6,max=100"`
}

type Signup struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"min=6,max=100"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

type CreateUser struct {
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"min=6,max=100"`
	FullName string     `json:"fullName" validate:"required,max=100"`
	Role     model.Role `json:"role" validate:"oneof=TEACHER STUDENT"`
}

var validate = validator.New()

var messages = map[string]string{
	"Email.required":    "Invalid email address",
	"Email.email":       "Invalid email address",
	"Email.max":         "Email must be at most 255 characters",
	"Password.min":      "Password must be at least 6 characters",
	"Password.max":      "Password must be at most 100 characters",
	"FullName.required": "Name is required",
	"FullName.max":      "Name must be at most 100 characters",
	"Role.oneof":        "Role must be TEACHER or STUDENT",
}

// ValidationError carries the first rule that failed.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (f *Login) Normalize() {}

func (f *Signup) Normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
}

func (f *CreateUser) Normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
}

type form interface {
	Normalize()
}

// Validate normalizes f in place and returns the first violation as a
// *ValidationError, or nil.
func Validate(f form) error {
	f.Normalize()

	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	msg, ok := messages[first.StructField()+"."+first.Tag()]
	if !ok {
		msg = "Invalid " + strings.ToLower(first.StructField())
	}

	return &ValidationError{
		Field:   first.StructField(),
		Rule:    first.Tag(),
		Message: msg,
	}
}

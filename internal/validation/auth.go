// Package validation checks and normalizes auth request bodies before they
// reach the service layer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"acquisitions/internal/model"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a failed validation result
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ", ")
}

// SignUpRequest is the raw sign-up body
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SignUpInput is a validated, normalized sign-up body
type SignUpInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"` // bcrypt reads at most 72 bytes
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

// SignInRequest is the raw sign-in body
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInInput is a validated, normalized sign-in body
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// maxBytes bounds the UTF-8 length of a string, where max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp validates req. The role defaults to model.RoleUser.
func SignUp(req SignUpRequest) (SignUpInput, FieldErrors) {
	in := SignUpInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    NormalizeEmail(req.Email),
		Password: req.Password,
		Role:     strings.TrimSpace(req.Role),
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if errs := check(in); errs != nil {
		return SignUpInput{}, errs
	}
	return in, nil
}

// SignIn validates req.
func SignIn(req SignInRequest) (SignInInput, FieldErrors) {
	in := SignInInput{
		Email:    NormalizeEmail(req.Email),
		Password: req.Password,
	}
	if errs := check(in); errs != nil {
		return SignInInput{}, errs
	}
	return in, nil
}

func check(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "body", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

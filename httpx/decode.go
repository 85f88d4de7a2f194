package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/user/timemanager-go/apperror"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names ("first_name") instead of Go names ("FirstName").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// strongpassword: at least 8 characters, one uppercase letter and one digit.
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return v
}

// IsStrongPassword implements the password rule used at registration.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}

// DecodeJSON reads the request body into dst and runs struct validation on it.
// Both malformed JSON and failed validation come back as ValidationError.
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewValidationError("request body is required", err)
		}
		return apperror.NewValidationError("invalid request body: "+err.Error(), err)
	}
	return Validate(dst)
}

// Validate checks dst's `validate` struct tags and turns the first class of
// failure into a client-facing message.
func Validate(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidationError("invalid request", err)
	}

	// Missing fields are reported together, the way clients expect them.
	var missing []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperror.NewValidationError("Missing: "+strings.Join(missing, ", "), err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "email":
		return apperror.NewValidationError("Invalid email format", err)
	case "strongpassword":
		return apperror.NewValidationError("Password: 8+ chars, 1 uppercase, 1 number", err)
	case "oneof":
		return apperror.NewValidationError("Invalid "+fe.Field()+": must be one of "+fe.Param(), err)
	default:
		return apperror.NewValidationError("Invalid "+fe.Field(), err)
	}
}

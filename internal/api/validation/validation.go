// Package validation provides struct validation for request bodies.
package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/mentormatch/backend/internal/api/response"
)

// validate is a package-level singleton, safe for concurrent use once built.
// Registrations must happen in init() only.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// ValidateStruct validates s against its `validate` tags and returns one
// ErrorDetail per failed field. A nil return means the struct is valid.
func ValidateStruct(s any) []response.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.ErrorDetail{{Message: err.Error()}}
	}

	details := make([]response.ErrorDetail, 0, len(verrs))

	for _, fe := range verrs {
		details = append(details, response.ErrorDetail{
			Location: fe.Field(),
			Message:  "failed validation on '" + fe.Tag() + "'",
			Value:    fe.Value(),
		})
	}

	return details
}

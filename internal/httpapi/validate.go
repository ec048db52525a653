package httpapi

import "github.com/go-playground/validator/v10"

// validate is a single, stateless validator instance shared across
// requests, matching the package-level singleton idiom validator/v10
// itself recommends (caching struct reflection is what makes it cheap).
var validate = validator.New()

func validateStruct(v any) error {
	return validate.Struct(v)
}

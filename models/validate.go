package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// global validator instance; caches struct metadata across calls.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any record carrying validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var messages []string
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

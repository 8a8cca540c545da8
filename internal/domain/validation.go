package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so problems read the same as the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateNewQuiz checks the quiz metadata. Content is validated by the parser package.
func ValidateNewQuiz(q NewQuiz) error {
	return validateStruct(q)
}

// ValidatePatch checks the metadata fields of a partial update.
func ValidatePatch(p QuizPatch) error {
	return validateStruct(p)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	verr := NewValidationError()
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			verr.Add(fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		verr.Add(fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return verr
}

package lease

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/mathutil"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidParameters marks parameters the evaluator cannot be called with.
var ErrInvalidParameters = errors.New("invalid lease parameters")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the "finite" tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			return mathutil.IsFinite(fl.Field().Float())
		})
	})
	return validate
}

// Validate rejects parameters that make depreciation or rent charge undefined
// or leave no admissible CCR. Business plausibility (negative residuals, odd
// tax rates) is left to the caller.
func Validate(p Parameters) error {
	if err := Validator().Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	_, hi := AdmissibleRange(p)
	if hi <= 0 {
		return fmt.Errorf("%w: residual %.2f must be below cap cost %.2f", ErrInvalidParameters, p.Residual, CapCost(p))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "finite":
		return fmt.Sprintf("%s must be a finite number", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

package contracts

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validator caches struct metadata and is safe for concurrent use
var validate = validator.New()

// Validate checks that the stock code is a 6-digit numeric identifier
func (s Stock) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   "stock_code",
			Message: fmt.Sprintf("%q must be a 6-digit numeric code (rule %s)", s.Code, fe.Tag()),
		}
	}
	return &ValidationError{Field: "stock_code", Message: err.Error()}
}

// ValidateStockCode validates a bare stock code
func ValidateStockCode(code string) error {
	return Stock{Code: code}.Validate()
}

// Package validation holds the input format rules applied at the edges of the
// ledger (CLI prompts and HTTP requests). The ledger itself does not call it.
package validation

import (
	"regexp"

	"retail-ledger/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	emailRegex         = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
	phoneRegex         = regexp.MustCompile(`^[0-9]{10}$`)
	accountNumberRegex = regexp.MustCompile(`^[0-9]{10,16}$`)

	maxAmount     = decimal.NewFromInt(1_000_000)
	maxCustomerID = int64(9_999_999_999)
)

// Tag names registered by Register.
const (
	TagEmail         = "contact_email"
	TagPhone         = "phone10"
	TagAccountNumber = "account_number"
	TagAccountType   = "account_type"
	TagCustomerID    = "customer_id"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register installs the ledger's custom tags on v, e.g. gin's binding engine.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagEmail:         matchString(emailRegex),
		TagPhone:         matchString(phoneRegex),
		TagAccountNumber: matchString(accountNumberRegex),
		TagAccountType: func(fl validator.FieldLevel) bool {
			_, ok := models.ParseAccountType(fl.Field().String())
			return ok
		},
		TagCustomerID: func(fl validator.FieldLevel) bool {
			return IsValidCustomerID(fl.Field().Int())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func IsValidEmail(email string) bool {
	return validate.Var(email, "required,"+TagEmail) == nil
}

// IsValidPhone accepts exactly ten digits.
func IsValidPhone(phone string) bool {
	return validate.Var(phone, "required,"+TagPhone) == nil
}

// IsValidAccountNumber accepts 10 to 16 digits.
func IsValidAccountNumber(number string) bool {
	return validate.Var(number, "required,"+TagAccountNumber) == nil
}

func IsValidAccountType(accountType string) bool {
	return validate.Var(accountType, "required,"+TagAccountType) == nil
}

// IsValidAmount accepts 0 < amount <= 1,000,000.
func IsValidAmount(amount decimal.Decimal) bool {
	return amount.Sign() > 0 && amount.LessThanOrEqual(maxAmount)
}

// IsValidCustomerID accepts 0 < id <= 9,999,999,999.
func IsValidCustomerID(id int64) bool {
	return id > 0 && id <= maxCustomerID
}

// Struct validates a tagged struct with the package validator.
func Struct(s any) error {
	return validate.Struct(s)
}

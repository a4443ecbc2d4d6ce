package services

import "regexp"

// Checkout enumerations and formats. Everything here is rejected before a
// transaction is opened, so malformed input never costs a retry loop.

var validBanks = map[string]bool{
	"kb":      true,
	"shinhan": true,
	"woori":   true,
	"hana":    true,
	"nh":      true,
	"toss":    true,
}

var validPickupMethods = map[string]bool{
	"store":    true,
	"delivery": true,
}

var (
	phoneRe  = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)
	postalRe = regexp.MustCompile(`^\d{5}$`)
)

func validateBank(bank string) error {
	if !validBanks[bank] {
		return &ValidationError{Field: "bank", Message: "unknown bank code"}
	}
	return nil
}

func validatePickupMethod(method string) error {
	if !validPickupMethods[method] {
		return &ValidationError{Field: "pickup_method", Message: "must be store or delivery"}
	}
	return nil
}

func validatePhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: "invalid mobile number"}
	}
	return nil
}

func validatePostalCode(code string) error {
	if !postalRe.MatchString(code) {
		return &ValidationError{Field: "postal_code", Message: "must be 5 digits"}
	}
	return nil
}

// Points are spent in steps of 100; anything below is left on the account.
func roundDownTo100(n int) int {
	if n < 0 {
		return 0
	}
	return n / 100 * 100
}

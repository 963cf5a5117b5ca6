package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone returns the E.164 form of phone, interpreting national
// numbers in region. It returns "" if the number cannot be parsed or is
// not a valid number for its country.
func NormalizePhone(phone, region string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	parsedNumber, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil {
		return ""
	}
	if !phonenumbers.IsValidNumber(parsedNumber) {
		return ""
	}
	return phonenumbers.Format(parsedNumber, phonenumbers.E164)
}

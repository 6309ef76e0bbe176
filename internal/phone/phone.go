// Package phone validates and normalizes contact phone numbers using the
// libphonenumber metadata for a fixed region.
package phone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "BR"

// InvalidError reports why a raw number was rejected.
type InvalidError struct {
	Raw    string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid phone number %q: %s", e.Raw, e.Reason)
}

// ValidRegion reports whether region is a known CLDR region code.
func ValidRegion(region string) bool {
	return phonenumbers.GetCountryCodeForRegion(strings.ToUpper(region)) != 0
}

// Validator checks numbers against a single region.
type Validator struct {
	Region string
}

// New returns a Validator for region, falling back to DefaultRegion.
func New(region string) Validator {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return Validator{Region: region}
}

// Normalize parses raw and returns its E.164 digits without the leading
// plus sign, the form chat deep links expect.
//
// Numbers without an explicit "+" must belong to the validator's region.
// Spreadsheet artefacts such as "5511987654321.0" or "5.511987654321E+12"
// are accepted.
func (v Validator) Normalize(raw string) (string, error) {
	s := clean(raw)
	if s == "" {
		return "", &InvalidError{Raw: raw, Reason: "empty"}
	}

	region := v.Region
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(s, region)
	if err != nil {
		return "", &InvalidError{Raw: raw, Reason: err.Error()}
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", &InvalidError{Raw: raw, Reason: "not a valid number for region " + region}
	}
	if !strings.HasPrefix(s, "+") {
		if got := phonenumbers.GetRegionCodeForNumber(num); got != region {
			return "", &InvalidError{Raw: raw, Reason: fmt.Sprintf("number belongs to region %s, expected %s", got, region)}
		}
	}

	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"), nil
}

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return strings.TrimSuffix(s, ".0")
}

// internal/search/validator/fields.go
package validator

import (
	"encoding/json"
	"regexp"
	"strings"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/models"
)

var (
	nonDigit       = regexp.MustCompile(`\D`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	cityPattern    = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
	poBoxPattern   = regexp.MustCompile(`(?i)P\.?O\.?\s*BOX`)
	poBoxNumbered  = regexp.MustCompile(`(?i)^P\.?O\.?\s*BOX\s*\d`)
	wordStart      = regexp.MustCompile(`\b\w`)
	whitespace     = regexp.MustCompile(`\s+`)
	zip5Pattern    = regexp.MustCompile(`^\d{5}$`)
	zip9Pattern    = regexp.MustCompile(`^\d{5}-\d{4}$`)
	zip9AltPattern = regexp.MustCompile(`^\d{9}$`)
)

// streetAbbreviations is applied in order, whole word, case-insensitive.
var streetAbbreviations = []struct {
	pattern *regexp.Regexp
	abbrev  string
}{
	{regexp.MustCompile(`(?i)\bstreet\b`), "St"},
	{regexp.MustCompile(`(?i)\bavenue\b`), "Ave"},
	{regexp.MustCompile(`(?i)\bboulevard\b`), "Blvd"},
	{regexp.MustCompile(`(?i)\bdrive\b`), "Dr"},
	{regexp.MustCompile(`(?i)\blane\b`), "Ln"},
	{regexp.MustCompile(`(?i)\broad\b`), "Rd"},
	{regexp.MustCompile(`(?i)\bcircle\b`), "Cir"},
	{regexp.MustCompile(`(?i)\bcourt\b`), "Ct"},
	{regexp.MustCompile(`(?i)\bplace\b`), "Pl"},
	{regexp.MustCompile(`(?i)\bsquare\b`), "Sq"},
	{regexp.MustCompile(`(?i)\bterrace\b`), "Ter"},
	{regexp.MustCompile(`(?i)\bparkway\b`), "Pkwy"},
	{regexp.MustCompile(`(?i)\bhighway\b`), "Hwy"},
	{regexp.MustCompile(`(?i)\bexpressway\b`), "Expy"},
}

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"DC": {},
}

// ValidatePhone strips formatting and produces a US E.164 number.
func ValidatePhone(q models.PhoneQuery) (*models.ValidationResult, models.PhoneQuery) {
	r := models.NewValidationResult()

	digits := nonDigit.ReplaceAllString(q.PhoneNumber, "")
	if digits == "" {
		r.Fail(apperrors.ValidationMissingInput, "Phone number is required")
		return r, q
	}
	if len(digits) < 10 {
		r.Fail(apperrors.ValidationTooShort, "Phone number must contain at least 10 digits")
		return r, q
	}
	if len(digits) > 10 {
		r.Warn("Extra digits will be truncated")
	}

	formatted := "+1" + digits[:10]
	r.Succeed(formatted, formatted)
	return r, models.PhoneQuery{PhoneNumber: formatted}
}

// ValidateEmail checks the basic local@domain.tld shape.
func ValidateEmail(q models.EmailQuery) (*models.ValidationResult, models.EmailQuery) {
	r := models.NewValidationResult()

	email := strings.TrimSpace(q.Email)
	switch {
	case email == "":
		r.Fail(apperrors.ValidationMissingInput, "Email address is required")
	case !emailPattern.MatchString(email):
		r.Fail(apperrors.ValidationInvalidFormat, "Invalid email format")
	case strings.Contains(email, ".."):
		r.Fail(apperrors.ValidationInvalidFormat, "Email cannot contain consecutive dots")
	case strings.HasPrefix(email, ".") || strings.HasSuffix(email, "."):
		r.Fail(apperrors.ValidationInvalidFormat, "Email cannot start or end with a dot")
	}
	if len(r.Errors) > 0 {
		return r, q
	}

	formatted := strings.ToLower(email)
	r.Succeed(formatted, formatted)
	return r, models.EmailQuery{Email: formatted}
}

// ValidateName requires a last name; first name, city and state only
// improve accuracy and produce warnings when missing or suspicious.
func ValidateName(q models.NameQuery) (*models.ValidationResult, models.NameQuery) {
	r := models.NewValidationResult()

	out := models.NameQuery{
		FirstName: strings.TrimSpace(q.FirstName),
		LastName:  strings.TrimSpace(q.LastName),
		City:      strings.TrimSpace(q.City),
		State:     strings.ToUpper(strings.TrimSpace(q.State)),
	}

	switch {
	case out.LastName == "":
		r.Fail(apperrors.ValidationMissingInput, "Last name is required for name searches")
	case len(out.LastName) < 2:
		r.Fail(apperrors.ValidationInvalidFormat, "Last name must be at least 2 characters")
	case !namePattern.MatchString(out.LastName):
		r.Fail(apperrors.ValidationInvalidFormat, "Last name contains invalid characters")
	case out.FirstName != "" && !namePattern.MatchString(out.FirstName):
		r.Fail(apperrors.ValidationInvalidFormat, "First name contains invalid characters")
	}
	if len(r.Errors) > 0 {
		return r, q
	}

	if out.FirstName == "" {
		r.Warn("Adding a first name will improve match accuracy")
	}
	if out.City == "" {
		r.Warn("Adding a city will improve match accuracy")
	} else if len(out.City) < 2 {
		r.Warn("City name seems too short")
	}
	if out.State == "" {
		r.Warn("Adding a state will improve match accuracy")
	} else if len(out.State) != 2 {
		r.Warn("State should be 2-letter code (e.g., NY, CA)")
	}

	payload := mustJSON(out)
	r.Succeed(payload, payload)
	return r, out
}

// addressPayload is the standardization request shape; empty fields are
// dropped.
type addressPayload struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipcode,omitempty"`
}

// ValidateAddress checks and canonicalizes a US street address.
func ValidateAddress(q models.AddressQuery) (*models.ValidationResult, models.AddressQuery) {
	r := models.NewValidationResult()

	street := strings.TrimSpace(q.Street)
	if street == "" {
		r.Fail(apperrors.ValidationMissingInput, "Street address is required")
		return r, q
	}
	if !startsWithDigit(street) && !poBoxNumbered.MatchString(street) {
		r.Fail(apperrors.ValidationMissingStreetNumber, `Address must start with a street number (e.g., "123 Main St")`)
		return r, q
	}
	if len(street) < 5 {
		r.Fail(apperrors.ValidationInvalidFormat, "Street address must contain at least street number and name")
		return r, q
	}
	if poBoxPattern.MatchString(street) {
		r.Warn("PO Box addresses may have limited residential data availability")
	}

	out := models.AddressQuery{Street: FormatStreet(street)}

	if state := strings.ToUpper(strings.TrimSpace(q.State)); state != "" {
		if len(state) != 2 {
			r.Fail(apperrors.ValidationInvalidState, "State must be a valid 2-letter code (e.g., NY, CA, TX)")
			return r, q
		}
		if _, ok := usStates[state]; !ok {
			r.Fail(apperrors.ValidationInvalidState, "Invalid state code: "+state)
			return r, q
		}
		out.State = state
	}

	if city := strings.TrimSpace(q.City); city != "" {
		if len(city) < 2 {
			r.Warn("City name seems too short")
		} else if !cityPattern.MatchString(city) {
			r.Fail(apperrors.ValidationInvalidFormat, "City name contains invalid characters")
			return r, q
		}
		out.City = FormatCity(city)
	}

	if strings.TrimSpace(q.ZipCode) != "" {
		zip, ok := FormatZip(q.ZipCode)
		if !ok {
			r.Fail(apperrors.ValidationInvalidZip, "ZIP code must be in 5-digit (12345) or 9-digit (12345-6789) format")
			return r, q
		}
		out.ZipCode = zip
	}

	if out.City == "" && out.ZipCode == "" {
		r.Warn("Adding city or ZIP code will improve address validation accuracy")
	}
	if out.State == "" {
		r.Warn("Adding state will improve address validation accuracy")
	}

	payload := mustJSON(addressPayload{Street: out.Street, City: out.City, State: out.State, ZipCode: out.ZipCode})
	r.Succeed(payload, payload)
	return r, out
}

// FormatStreet replaces street-type words with their USPS abbreviations.
func FormatStreet(street string) string {
	for _, a := range streetAbbreviations {
		street = a.pattern.ReplaceAllString(street, a.abbrev)
	}
	return street
}

// FormatCity title-cases every word.
func FormatCity(city string) string {
	return wordStart.ReplaceAllStringFunc(strings.ToLower(city), strings.ToUpper)
}

// FormatZip accepts 12345, 12345-6789 and 123456789 (rewritten with a
// hyphen). Whitespace is ignored.
func FormatZip(raw string) (string, bool) {
	zip := whitespace.ReplaceAllString(raw, "")
	switch {
	case zip5Pattern.MatchString(zip), zip9Pattern.MatchString(zip):
		return zip, true
	case zip9AltPattern.MatchString(zip):
		return zip[:5] + "-" + zip[5:], true
	}
	return "", false
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

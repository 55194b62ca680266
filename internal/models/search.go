// internal/models/search.go
package models

import (
	"strings"
	"time"

	apperrors "people-search/internal/common/errors"
)

// SearchType names a search strategy.
type SearchType string

const (
	SearchTypeName          SearchType = "name"
	SearchTypePhone         SearchType = "phone"
	SearchTypeEmail         SearchType = "email"
	SearchTypeAddress       SearchType = "address"
	SearchTypeComprehensive SearchType = "comprehensive"
)

// ParseSearchType normalizes case and surrounding space. The result may be
// an unknown type; callers decide how to treat it.
func ParseSearchType(s string) SearchType {
	return SearchType(strings.ToLower(strings.TrimSpace(s)))
}

func (t SearchType) Known() bool {
	switch t {
	case SearchTypeName, SearchTypePhone, SearchTypeEmail, SearchTypeAddress, SearchTypeComprehensive:
		return true
	}
	return false
}

// NameQuery field order is the order of the name provider payload.
type NameQuery struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
	State     string `json:"state"`
}

type PhoneQuery struct {
	PhoneNumber string `json:"phoneNumber"`
}

type EmailQuery struct {
	Email string `json:"email"`
}

type AddressQuery struct {
	Street  string `json:"address"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// Query is a tagged union over the search variants. A single-type query
// carries exactly the variant of its Type; a comprehensive query carries
// every variant the caller supplied.
type Query struct {
	Type    SearchType
	Name    *NameQuery
	Phone   *PhoneQuery
	Email   *EmailQuery
	Address *AddressQuery
}

// QueryFields is the flat wire shape of a query, as accepted from HTTP
// bodies and job variables.
type QueryFields struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Address     string `json:"address,omitempty"`
	ZipCode     string `json:"zipCode,omitempty"`
}

// NewQuery builds the variant(s) for searchType from flat fields.
func NewQuery(searchType SearchType, f QueryFields) Query {
	q := Query{Type: searchType}

	name := &NameQuery{FirstName: f.FirstName, LastName: f.LastName, City: f.City, State: f.State}
	phone := &PhoneQuery{PhoneNumber: f.PhoneNumber}
	email := &EmailQuery{Email: f.Email}
	address := &AddressQuery{Street: f.Address, City: f.City, State: f.State, ZipCode: f.ZipCode}

	switch searchType {
	case SearchTypeName:
		q.Name = name
	case SearchTypePhone:
		q.Phone = phone
	case SearchTypeEmail:
		q.Email = email
	case SearchTypeAddress:
		q.Address = address
	default:
		if strings.TrimSpace(f.FirstName) != "" || strings.TrimSpace(f.LastName) != "" {
			q.Name = name
		}
		if strings.TrimSpace(f.PhoneNumber) != "" {
			q.Phone = phone
		}
		if strings.TrimSpace(f.Email) != "" {
			q.Email = email
		}
		if strings.TrimSpace(f.Address) != "" {
			q.Address = address
		}
	}
	return q
}

// Fields flattens q back to its wire shape. City and state come from the
// name variant when both name and address are present.
func (q Query) Fields() QueryFields {
	var f QueryFields
	if q.Address != nil {
		f.Address = q.Address.Street
		f.City = q.Address.City
		f.State = q.Address.State
		f.ZipCode = q.Address.ZipCode
	}
	if q.Name != nil {
		f.FirstName = q.Name.FirstName
		f.LastName = q.Name.LastName
		if q.Name.City != "" {
			f.City = q.Name.City
		}
		if q.Name.State != "" {
			f.State = q.Name.State
		}
	}
	if q.Phone != nil {
		f.PhoneNumber = q.Phone.PhoneNumber
	}
	if q.Email != nil {
		f.Email = q.Email.Email
	}
	return f
}

// SearchRequest is the inbound request body and job variable payload.
type SearchRequest struct {
	SearchID    string      `json:"searchId,omitempty"`
	SearchType  string      `json:"searchType"`
	SearchQuery QueryFields `json:"searchQuery"`
}

func (r SearchRequest) Query() Query {
	return NewQuery(ParseSearchType(r.SearchType), r.SearchQuery)
}

// ValidationResult is the outcome of validating one query. IsValid holds
// exactly when Errors is empty; FormattedValue is set only when valid.
type ValidationResult struct {
	IsValid        bool                     `json:"isValid"`
	FormattedValue string                   `json:"formattedValue,omitempty"`
	APIFormat      string                   `json:"apiFormat,omitempty"`
	Errors         []string                 `json:"errors"`
	Warnings       []string                 `json:"warnings"`
	Code           apperrors.ValidationCode `json:"code,omitempty"`
}

// NewValidationResult returns an empty, not yet valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Errors: []string{}, Warnings: []string{}}
}

// Fail records an error. The first recorded code wins.
func (v *ValidationResult) Fail(code apperrors.ValidationCode, msg string) {
	v.Errors = append(v.Errors, msg)
	if v.Code == "" {
		v.Code = code
	}
	v.IsValid = false
	v.FormattedValue = ""
	v.APIFormat = ""
}

func (v *ValidationResult) Warn(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// Succeed marks the result valid unless an error was already recorded.
func (v *ValidationResult) Succeed(formatted, apiFormat string) {
	if len(v.Errors) > 0 {
		return
	}
	v.IsValid = true
	v.FormattedValue = formatted
	v.APIFormat = apiFormat
}

// Err converts an invalid result into a *ValidationError, nil when valid.
func (v *ValidationResult) Err(searchType SearchType) error {
	if v.IsValid {
		return nil
	}
	return &apperrors.ValidationError{
		SearchType: string(searchType),
		Code:       v.Code,
		Errors:     append([]string(nil), v.Errors...),
		Warnings:   append([]string(nil), v.Warnings...),
	}
}

// ResultItem is a loosely typed provider record. The "type" field tags it
// as one of the ItemKind values.
type ResultItem map[string]interface{}

type ItemKind string

const (
	KindPerson     ItemKind = "person"
	KindAddress    ItemKind = "address"
	KindEmailMatch ItemKind = "email-match"
	KindPhoneMatch ItemKind = "phone-match"
)

func (i ResultItem) Kind() ItemKind {
	s, _ := i["type"].(string)
	return ItemKind(s)
}

// Has reports whether field is present with a non-empty value.
func (i ResultItem) Has(field string) bool {
	v, ok := i[field]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case []interface{}:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	}
	return true
}

// Set stores value under field unless it is an empty string or nil.
func (i ResultItem) Set(field string, value interface{}) {
	if value == nil {
		return
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return
	}
	i[field] = value
}

// Buckets groups fused items by shape.
type Buckets struct {
	People    []ResultItem `json:"people"`
	Addresses []ResultItem `json:"addresses"`
	Emails    []ResultItem `json:"emails"`
	Phones    []ResultItem `json:"phones"`
}

func (b *Buckets) Len() int {
	return len(b.People) + len(b.Addresses) + len(b.Emails) + len(b.Phones)
}

// SourceFailure records a comprehensive member that did not contribute.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type ResultMetadata struct {
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	SourcesUsed   []string        `json:"sourcesUsed,omitempty"`
	SourcesFailed []SourceFailure `json:"sourcesFailed,omitempty"`
	TotalResults  int             `json:"totalResults"`
}

// ProviderResult is produced once per adapter invocation. Buckets is set
// only on fused comprehensive results, in which case Items is empty.
type ProviderResult struct {
	Source   string         `json:"source"`
	Items    []ResultItem   `json:"results,omitempty"`
	Buckets  *Buckets       `json:"buckets,omitempty"`
	Metadata ResultMetadata `json:"metadata"`
}

// Flatten returns every item: the plain list, or the buckets in
// people, addresses, emails, phones order.
func (r *ProviderResult) Flatten() []ResultItem {
	if r.Buckets == nil {
		return r.Items
	}
	out := make([]ResultItem, 0, r.Buckets.Len()+len(r.Items))
	out = append(out, r.Items...)
	out = append(out, r.Buckets.People...)
	out = append(out, r.Buckets.Addresses...)
	out = append(out, r.Buckets.Emails...)
	out = append(out, r.Buckets.Phones...)
	return out
}

type EnhancedData struct {
	ConfidenceScore int       `json:"confidenceScore"`
	Verified        bool      `json:"verified"`
	Timestamp       time.Time `json:"timestamp"`
}

// EnhancedResult is the terminal artifact returned to the caller.
type EnhancedResult struct {
	SearchID   string         `json:"searchId"`
	SearchType SearchType     `json:"searchType"`
	Strategy   string         `json:"strategy"`
	Fallback   bool           `json:"fallback"`
	Cached     bool           `json:"cached"`
	Result     ProviderResult `json:"result"`
	Enhanced   EnhancedData   `json:"enhancedData"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// internal/search/validator/validator.go

// Package validator checks and normalizes search queries before any
// provider is contacted. Everything here is pure: no I/O, no mutation of
// the input.
package validator

import (
	apperrors "people-search/internal/common/errors"
	"people-search/internal/models"
)

// Validate validates q according to q.Type.
func Validate(q models.Query) *models.ValidationResult {
	r, _ := Normalize(q)
	return r
}

// Normalize validates q and returns the normalized query the adapters
// consume. The returned query is only meaningful when the result is valid.
func Normalize(q models.Query) (*models.ValidationResult, models.Query) {
	out := models.Query{Type: q.Type}

	switch q.Type {
	case models.SearchTypePhone:
		r, phone := ValidatePhone(deref(q.Phone))
		out.Phone = &phone
		return r, out

	case models.SearchTypeEmail:
		r, email := ValidateEmail(deref(q.Email))
		out.Email = &email
		return r, out

	case models.SearchTypeName:
		r, name := ValidateName(deref(q.Name))
		out.Name = &name
		return r, out

	case models.SearchTypeAddress:
		r, address := ValidateAddress(deref(q.Address))
		out.Address = &address
		return r, out

	case models.SearchTypeComprehensive:
		return normalizeComprehensive(q)

	default:
		r := models.NewValidationResult()
		r.Fail(apperrors.ValidationUnknownSearchType, "Unknown search type: "+string(q.Type))
		return r, q
	}
}

// normalizeComprehensive validates every supplied variant. At least one of
// the comprehensive members (email, phone, name) must be present.
func normalizeComprehensive(q models.Query) (*models.ValidationResult, models.Query) {
	r := models.NewValidationResult()
	out := models.Query{Type: q.Type}

	if q.Email == nil && q.Phone == nil && q.Name == nil {
		r.Fail(apperrors.ValidationMissingInput, "Comprehensive search requires an email, a phone number or a last name")
		return r, q
	}

	merge := func(label string, sub *models.ValidationResult) {
		for _, e := range sub.Errors {
			r.Fail(sub.Code, label+": "+e)
		}
		for _, w := range sub.Warnings {
			r.Warn(label + ": " + w)
		}
	}

	if q.Email != nil {
		sub, email := ValidateEmail(*q.Email)
		merge("email", sub)
		out.Email = &email
	}
	if q.Phone != nil {
		sub, phone := ValidatePhone(*q.Phone)
		merge("phone", sub)
		out.Phone = &phone
	}
	if q.Name != nil {
		sub, name := ValidateName(*q.Name)
		merge("name", sub)
		out.Name = &name
	}
	if q.Address != nil {
		sub, address := ValidateAddress(*q.Address)
		merge("address", sub)
		out.Address = &address
	}

	payload := mustJSON(out.Fields())
	r.Succeed(payload, payload)
	return r, out
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// internal/search/providers/selector.go
package providers

import (
	"people-search/internal/common/config"
	"people-search/internal/common/logger"
	"people-search/internal/models"
	"people-search/internal/search/fusion"
)

// Kind is the closed set of adapter strategies.
type Kind int

const (
	KindComprehensive Kind = iota
	KindEmail
	KindPhone
	KindName
	KindAddress
)

func (k Kind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	case KindName:
		return "name"
	case KindAddress:
		return "address"
	default:
		return "comprehensive"
	}
}

// KindFor maps a search type to its strategy. Unknown types get the
// comprehensive strategy instead of an error.
func KindFor(t models.SearchType) Kind {
	switch t {
	case models.SearchTypeEmail:
		return KindEmail
	case models.SearchTypePhone:
		return KindPhone
	case models.SearchTypeName:
		return KindName
	case models.SearchTypeAddress:
		return KindAddress
	default:
		return KindComprehensive
	}
}

// Selector owns one adapter per kind.
type Selector struct {
	email         Adapter
	phone         Adapter
	name          Adapter
	address       Adapter
	comprehensive Adapter
}

// NewSelector builds every adapter from configuration.
func NewSelector(cfg config.ProvidersConfig, log logger.Logger) *Selector {
	return NewSelectorFromAdapters(
		NewEmail(cfg.Email, log),
		NewPhone(cfg.Phone, log),
		NewName(cfg.Address, cfg.PeopleSearch, log),
		NewAddress(cfg.Address, log),
		log,
	)
}

// NewSelectorFromAdapters builds the comprehensive adapter over the given
// email, phone and name adapters.
func NewSelectorFromAdapters(email, phone, name, address Adapter, log logger.Logger) *Selector {
	return &Selector{
		email:         email,
		phone:         phone,
		name:          name,
		address:       address,
		comprehensive: NewComprehensive(email, phone, name, fusion.New(log), log),
	}
}

func (s *Selector) Select(t models.SearchType) Adapter {
	return s.ForKind(KindFor(t))
}

func (s *Selector) ForKind(k Kind) Adapter {
	switch k {
	case KindEmail:
		return s.email
	case KindPhone:
		return s.phone
	case KindName:
		return s.name
	case KindAddress:
		return s.address
	default:
		return s.comprehensive
	}
}

// Comprehensive is the fallback adapter.
func (s *Selector) Comprehensive() Adapter {
	return s.comprehensive
}

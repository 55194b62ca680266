// internal/search/profiles/profiles.go

// Package profiles is the local people directory: stored profiles matched
// by name, phone, address or email, and fetched by id.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"people-search/internal/common/logger"
	"people-search/internal/models"
)

// DefaultLimit caps a directory lookup when no limit is configured.
const DefaultLimit = 50

var (
	ErrNotFound        = errors.New("profile not found")
	ErrInvalidID       = errors.New("invalid profile id")
	ErrUnsupportedType = errors.New("invalid search type")
)

// Relation is a relative or an associate.
type Relation struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Age          int    `json:"age,omitempty"`
}

type Education struct {
	Degree string `json:"degree,omitempty"`
	School string `json:"school,omitempty"`
}

// Profile is one directory entry.
type Profile struct {
	ID              string      `json:"id"`
	FirstName       string      `json:"firstName"`
	MiddleName      string      `json:"middleName,omitempty"`
	LastName        string      `json:"lastName"`
	Age             int         `json:"age,omitempty"`
	CurrentAddress  string      `json:"currentAddress,omitempty"`
	City            string      `json:"city,omitempty"`
	State           string      `json:"state,omitempty"`
	ZipCode         string      `json:"zipCode,omitempty"`
	PhoneNumbers    []string    `json:"phoneNumbers"`
	EmailAddresses  []string    `json:"emailAddresses"`
	Relatives       []Relation  `json:"relatives"`
	Associates      []Relation  `json:"associates"`
	AddressHistory  []string    `json:"addressHistory"`
	Occupation      string      `json:"occupation,omitempty"`
	Employer        string      `json:"employer,omitempty"`
	Education       []Education `json:"education"`
	ProfileImageURL string      `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// normalize replaces nil lists with empty ones so they encode as [].
func (p *Profile) normalize() {
	if p.PhoneNumbers == nil {
		p.PhoneNumbers = []string{}
	}
	if p.EmailAddresses == nil {
		p.EmailAddresses = []string{}
	}
	if p.Relatives == nil {
		p.Relatives = []Relation{}
	}
	if p.Associates == nil {
		p.Associates = []Relation{}
	}
	if p.AddressHistory == nil {
		p.AddressHistory = []string{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// Filter holds substring criteria, except State which matches exactly.
// Set fields are combined with AND; an empty filter matches everything.
// Address matches the current address or any previous one.
type Filter struct {
	FirstName   string
	LastName    string
	City        string
	State       string
	PhoneNumber string
	Address     string
	Email       string
}

func (f Filter) Empty() bool {
	return f == Filter{}
}

// FilterFor picks the criteria a search type looks at. Comprehensive and
// unknown types have no directory mapping.
func FilterFor(t models.SearchType, q models.QueryFields) (Filter, error) {
	trim := strings.TrimSpace
	switch t {
	case models.SearchTypeName:
		return Filter{
			FirstName: trim(q.FirstName),
			LastName:  trim(q.LastName),
			City:      trim(q.City),
			State:     trim(q.State),
		}, nil
	case models.SearchTypePhone:
		return Filter{PhoneNumber: trim(q.PhoneNumber)}, nil
	case models.SearchTypeAddress:
		return Filter{
			Address: trim(q.Address),
			City:    trim(q.City),
			State:   trim(q.State),
		}, nil
	case models.SearchTypeEmail:
		return Filter{Email: trim(q.Email)}, nil
	}
	return Filter{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// Store is a directory backend.
type Store interface {
	Search(ctx context.Context, f Filter, limit int) ([]Profile, error)
	// Get returns ErrNotFound for a missing profile and ErrInvalidID for an
	// id the backend cannot address.
	Get(ctx context.Context, id string) (*Profile, error)
	Backend() string
}

// LookupResult is the answer to a directory lookup.
type LookupResult struct {
	Results []Profile `json:"results"`
	Total   int       `json:"total"`
}

// Directory answers lookups from a Store.
type Directory struct {
	store Store
	limit int
	log   logger.Logger
}

func NewDirectory(store Store, limit int, log logger.Logger) *Directory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Directory{
		store: store,
		limit: limit,
		log:   log.WithFields(map[string]interface{}{"component": "profiles", "backend": store.Backend()}),
	}
}

// Lookup searches the directory with the criteria of searchType.
func (d *Directory) Lookup(ctx context.Context, searchType models.SearchType, q models.QueryFields) (*LookupResult, error) {
	f, err := FilterFor(searchType, q)
	if err != nil {
		return nil, err
	}

	found, err := d.store.Search(ctx, f, d.limit)
	if err != nil {
		d.log.Error("directory lookup failed", map[string]interface{}{
			"searchType": string(searchType),
			"error":      err,
		})
		return nil, err
	}
	for i := range found {
		found[i].normalize()
	}

	d.log.Debug("directory lookup", map[string]interface{}{
		"searchType": string(searchType),
		"total":      len(found),
	})
	return &LookupResult{Results: found, Total: len(found)}, nil
}

func (d *Directory) Profile(ctx context.Context, id string) (*Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidID
	}
	p, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.normalize()
	return p, nil
}

func (d *Directory) Backend() string {
	return d.store.Backend()
}

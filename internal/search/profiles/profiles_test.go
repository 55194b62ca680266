package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"people-search/internal/common/logger"
	"people-search/internal/models"
)

// ==========================
// Test doubles
// ==========================

type stubStore struct {
	profiles  []Profile
	err       error
	gotFilter Filter
	gotLimit  int
}

func (s *stubStore) Backend() string { return "stub" }

func (s *stubStore) Search(_ context.Context, f Filter, limit int) ([]Profile, error) {
	s.gotFilter, s.gotLimit = f, limit
	return s.profiles, s.err
}

func (s *stubStore) Get(_ context.Context, id string) (*Profile, error) {
	for _, p := range s.profiles {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// ==========================
// FilterFor
// ==========================

func TestFilterFor(t *testing.T) {
	fields := models.QueryFields{
		FirstName:   " Jane ",
		LastName:    "Doe",
		City:        "Reno",
		State:       "NV",
		PhoneNumber: "555-0123",
		Address:     "12 Main St",
		Email:       "jane@example.com",
	}

	tests := []struct {
		searchType models.SearchType
		want       Filter
	}{
		{models.SearchTypeName, Filter{FirstName: "Jane", LastName: "Doe", City: "Reno", State: "NV"}},
		{models.SearchTypePhone, Filter{PhoneNumber: "555-0123"}},
		{models.SearchTypeAddress, Filter{Address: "12 Main St", City: "Reno", State: "NV"}},
		{models.SearchTypeEmail, Filter{Email: "jane@example.com"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.searchType), func(t *testing.T) {
			got, err := FilterFor(tt.searchType, fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterFor_UnsupportedTypes(t *testing.T) {
	for _, st := range []models.SearchType{models.SearchTypeComprehensive, models.ParseSearchType("reverse")} {
		_, err := FilterFor(st, models.QueryFields{Email: "jane@example.com"})
		assert.ErrorIs(t, err, ErrUnsupportedType)
	}
}

// ==========================
// Directory
// ==========================

func TestDirectory_Lookup(t *testing.T) {
	store := &stubStore{profiles: []Profile{{ID: "1", FirstName: "Jane", LastName: "Doe"}}}
	d := NewDirectory(store, 0, logger.NewTestLogger(t))

	res, err := d.Lookup(context.Background(), models.SearchTypeName, models.QueryFields{LastName: "Doe"})

	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, store.gotLimit)
	assert.Equal(t, Filter{LastName: "Doe"}, store.gotFilter)
	assert.Equal(t, 1, res.Total)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"phoneNumbers":[]`)
	assert.Contains(t, string(body), `"total":1`)
}

func TestDirectory_LookupEmptyCriteriaListsAll(t *testing.T) {
	store := &stubStore{profiles: []Profile{{ID: "1"}, {ID: "2"}}}
	d := NewDirectory(store, 10, logger.NewTestLogger(t))

	res, err := d.Lookup(context.Background(), models.SearchTypePhone, models.QueryFields{})

	require.NoError(t, err)
	assert.True(t, store.gotFilter.Empty())
	assert.Equal(t, 10, store.gotLimit)
	assert.Equal(t, 2, res.Total)
}

func TestDirectory_LookupErrors(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	d := NewDirectory(store, 0, logger.NewTestLogger(t))

	_, err := d.Lookup(context.Background(), models.SearchTypeComprehensive, models.QueryFields{})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = d.Lookup(context.Background(), models.SearchTypeEmail, models.QueryFields{Email: "x@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestDirectory_Profile(t *testing.T) {
	store := &stubStore{profiles: []Profile{{ID: "7", FirstName: "Jane"}}}
	d := NewDirectory(store, 0, logger.NewTestLogger(t))

	p, err := d.Profile(context.Background(), " 7 ")
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.FirstName)
	assert.NotNil(t, p.Relatives)

	_, err = d.Profile(context.Background(), "8")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.Profile(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidID)
}

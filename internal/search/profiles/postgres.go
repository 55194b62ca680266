// internal/search/profiles/postgres.go
package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"people-search/internal/common/database"
)

const BackendPostgres = "postgres"

const profilesSchemaSQL = `
CREATE TABLE IF NOT EXISTS people_profiles (
	id                SERIAL PRIMARY KEY,
	first_name        VARCHAR     NOT NULL,
	middle_name       VARCHAR,
	last_name         VARCHAR     NOT NULL,
	age               INTEGER,
	current_address   TEXT,
	city              VARCHAR,
	state             VARCHAR,
	zip_code          VARCHAR,
	phone_numbers     JSONB,
	email_addresses   JSONB,
	relatives         JSONB,
	associates        JSONB,
	address_history   JSONB,
	occupation        VARCHAR,
	employer          VARCHAR,
	education         JSONB,
	profile_image_url VARCHAR,
	created_at        TIMESTAMPTZ DEFAULT NOW(),
	updated_at        TIMESTAMPTZ DEFAULT NOW()
)`

const selectProfilesSQL = `SELECT id, first_name, middle_name, last_name, age, current_address, city, state, zip_code,
	phone_numbers, email_addresses, relatives, associates, address_history,
	occupation, employer, education, profile_image_url, created_at, updated_at
	FROM people_profiles`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresStore reads the people_profiles table.
type PostgresStore struct {
	client *database.PostgresClient
}

func NewPostgresStore(client *database.PostgresClient) *PostgresStore {
	return &PostgresStore{client: client}
}

func (s *PostgresStore) Backend() string { return BackendPostgres }

// EnsureSchema creates the table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.Exec(ctx, profilesSchemaSQL); err != nil {
		return fmt.Errorf("create people_profiles: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, f Filter, limit int) ([]Profile, error) {
	query, args := buildSearchSQL(f, limit)

	rows, err := s.client.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query people_profiles: %w", err)
	}
	defer rows.Close()

	found := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, *p)
	}
	return found, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Profile, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	row := s.client.DB.QueryRowContext(ctx, selectProfilesSQL+` WHERE id = $1`, n)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// buildSearchSQL turns f into a parameterized query. Substring criteria
// are case-insensitive.
func buildSearchSQL(f Filter, limit int) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.FirstName != "" {
		add("first_name ILIKE $%d", contains(f.FirstName))
	}
	if f.LastName != "" {
		add("last_name ILIKE $%d", contains(f.LastName))
	}
	if f.City != "" {
		add("city ILIKE $%d", contains(f.City))
	}
	if f.State != "" {
		add("state = $%d", f.State)
	}
	if f.PhoneNumber != "" {
		add("phone_numbers::text ILIKE $%d", contains(f.PhoneNumber))
	}
	if f.Email != "" {
		add("email_addresses::text ILIKE $%d", contains(f.Email))
	}
	if f.Address != "" {
		add("(current_address ILIKE $%[1]d OR address_history::text ILIKE $%[1]d)", contains(f.Address))
	}

	query := selectProfilesSQL
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	return query, args
}

func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p                                     Profile
		id                                    int64
		age                                   sql.NullInt64
		middle, addr, city, state, zip        sql.NullString
		occupation, employer, image           sql.NullString
		phones, emails, relatives, associates []byte
		addressHistory, education             []byte
		createdAt, updatedAt                  sql.NullTime
	)
	err := row.Scan(&id, &p.FirstName, &middle, &p.LastName, &age, &addr, &city, &state, &zip,
		&phones, &emails, &relatives, &associates, &addressHistory,
		&occupation, &employer, &education, &image, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan people_profiles: %w", err)
	}

	p.ID = strconv.FormatInt(id, 10)
	p.MiddleName = middle.String
	p.Age = int(age.Int64)
	p.CurrentAddress = addr.String
	p.City = city.String
	p.State = state.String
	p.ZipCode = zip.String
	p.Occupation = occupation.String
	p.Employer = employer.String
	p.ProfileImageURL = image.String
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	columns := []struct {
		name string
		raw  []byte
		dst  interface{}
	}{
		{"phone_numbers", phones, &p.PhoneNumbers},
		{"email_addresses", emails, &p.EmailAddresses},
		{"relatives", relatives, &p.Relatives},
		{"associates", associates, &p.Associates},
		{"address_history", addressHistory, &p.AddressHistory},
		{"education", education, &p.Education},
	}
	for _, c := range columns {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
	}
	return &p, nil
}

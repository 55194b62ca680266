// internal/search/providers/address.go
package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"people-search/internal/common/config"
	httpclient "people-search/internal/common/http"
	"people-search/internal/common/logger"
	"people-search/internal/models"
)

const (
	AddressProviderName = "Smarty Address API"

	smartyPath       = "street-address"
	smartyCandidates = "10"
)

// NewAddress returns the street address standardization adapter.
func NewAddress(cfg config.ProviderConfig, log logger.Logger) Adapter {
	return &httpAdapter{
		endpoint: newEndpoint(AddressProviderName, cfg, log),
		contract: addressContract{smartyAuth{id: cfg.AuthID, token: cfg.AuthToken}},
	}
}

type smartyAuth struct {
	id    string
	token string
}

func (a smartyAuth) request(params url.Values) *httpclient.Request {
	params.Set("auth-id", a.id)
	params.Set("auth-token", a.token)
	params.Set("candidates", smartyCandidates)
	return &httpclient.Request{Path: smartyPath, Query: params}
}

type addressContract struct {
	auth smartyAuth
}

func (c addressContract) buildRequest(q models.Query) (*httpclient.Request, error) {
	if q.Address == nil || q.Address.Street == "" {
		return nil, errMissingVariant
	}
	params := url.Values{"street": {q.Address.Street}}
	setIfPresent(params, "city", q.Address.City)
	setIfPresent(params, "state", q.Address.State)
	setIfPresent(params, "zipcode", q.Address.ZipCode)
	return c.auth.request(params), nil
}

func (addressContract) extract(body []byte) ([]models.ResultItem, error) {
	return extractCandidates(body)
}

type smartyCandidate struct {
	DeliveryLine1 string `json:"delivery_line_1"`
	DeliveryLine2 string `json:"delivery_line_2"`
	LastLine      string `json:"last_line"`
	Components    struct {
		CityName          string `json:"city_name"`
		StateAbbreviation string `json:"state_abbreviation"`
		Zipcode           string `json:"zipcode"`
		Plus4Code         string `json:"plus4_code"`
	} `json:"components"`
	Metadata struct {
		CountyName string   `json:"county_name"`
		Latitude   *float64 `json:"latitude"`
		Longitude  *float64 `json:"longitude"`
		Precision  string   `json:"precision"`
		TimeZone   string   `json:"time_zone"`
		UTCOffset  *float64 `json:"utc_offset"`
	} `json:"metadata"`
}

// extractCandidates keeps provider order. An empty body or a non-array
// body means no candidates.
func extractCandidates(body []byte) ([]models.ResultItem, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || !strings.HasPrefix(trimmed, "[") {
		return []models.ResultItem{}, nil
	}

	var candidates []smartyCandidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, err
	}

	items := make([]models.ResultItem, 0, len(candidates))
	for _, c := range candidates {
		item := models.ResultItem{"type": string(models.KindAddress)}
		item.Set("deliveryLine", c.DeliveryLine1)
		item.Set("secondary", c.DeliveryLine2)
		item.Set("city", c.Components.CityName)
		item.Set("state", c.Components.StateAbbreviation)
		item.Set("zipcode", c.Components.Zipcode)
		item.Set("county", c.Metadata.CountyName)
		item.Set("precision", c.Metadata.Precision)
		item.Set("timeZone", c.Metadata.TimeZone)
		setFloat(item, "latitude", c.Metadata.Latitude)
		setFloat(item, "longitude", c.Metadata.Longitude)
		setFloat(item, "utcOffset", c.Metadata.UTCOffset)
		// the one-line form is what scoring and the renderers key on.
		item.Set("address", composeAddress(c))
		items = append(items, item)
	}
	return items, nil
}

// composeAddress renders one line: delivery line then last line, or the
// components when the last line is missing.
func composeAddress(c smartyCandidate) string {
	last := c.LastLine
	if last == "" {
		zip := c.Components.Zipcode
		if zip != "" && c.Components.Plus4Code != "" {
			zip = fmt.Sprintf("%s-%s", zip, c.Components.Plus4Code)
		}
		last = strings.Join(nonEmpty(c.Components.CityName, c.Components.StateAbbreviation+" "+zip), ", ")
	}
	return strings.Join(nonEmpty(c.DeliveryLine1, c.DeliveryLine2, last), ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setFloat(item models.ResultItem, key string, v *float64) {
	if v != nil {
		item[key] = *v
	}
}

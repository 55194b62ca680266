// internal/search/providers/phone.go
package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"people-search/internal/common/config"
	httpclient "people-search/internal/common/http"
	"people-search/internal/common/logger"
	"people-search/internal/models"
)

const PhoneProviderName = "NumVerify Phone API"

var nonDigit = regexp.MustCompile(`\D`)

// NewPhone returns the phone validation adapter.
func NewPhone(cfg config.ProviderConfig, log logger.Logger) Adapter {
	return &httpAdapter{
		endpoint: newEndpoint(PhoneProviderName, cfg, log),
		contract: phoneContract{apiKey: cfg.APIKey},
	}
}

type phoneContract struct {
	apiKey string
}

func (c phoneContract) buildRequest(q models.Query) (*httpclient.Request, error) {
	if q.Phone == nil {
		return nil, errMissingVariant
	}
	number := nonDigit.ReplaceAllString(q.Phone.PhoneNumber, "")
	if number == "" {
		return nil, errMissingVariant
	}
	return &httpclient.Request{
		Path: "validate",
		Query: url.Values{
			"access_key": {c.apiKey},
			"number":     {number},
		},
	}, nil
}

type numverifyResponse struct {
	Valid               bool   `json:"valid"`
	Number              string `json:"number"`
	LocalFormat         string `json:"local_format"`
	InternationalFormat string `json:"international_format"`
	CountryName         string `json:"country_name"`
	Location            string `json:"location"`
	Carrier             string `json:"carrier"`
	LineType            string `json:"line_type"`

	// Set on 200 responses that are really errors.
	Success *bool `json:"success"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

func (phoneContract) extract(body []byte) ([]models.ResultItem, error) {
	var resp numverifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil || (resp.Success != nil && !*resp.Success) {
		if resp.Error != nil {
			return nil, fmt.Errorf("upstream error %d %s: %s", resp.Error.Code, resp.Error.Type, resp.Error.Info)
		}
		return nil, errors.New("upstream reported failure")
	}
	if !resp.Valid {
		return []models.ResultItem{}, nil
	}

	item := models.ResultItem{
		"type":  string(models.KindPhoneMatch),
		"valid": true,
	}
	item.Set("phone", firstNonEmpty(resp.InternationalFormat, resp.Number))
	item.Set("localFormat", resp.LocalFormat)
	item.Set("country", resp.CountryName)
	item.Set("location", resp.Location)
	item.Set("carrier", resp.Carrier)
	item.Set("lineType", resp.LineType)
	return []models.ResultItem{item}, nil
}

// internal/search/providers/email.go
package providers

import (
	"encoding/json"
	"net/url"
	"strings"

	"people-search/internal/common/config"
	httpclient "people-search/internal/common/http"
	"people-search/internal/common/logger"
	"people-search/internal/models"
)

const EmailProviderName = "Hunter.io Email API"

// NewEmail returns the email finder adapter.
func NewEmail(cfg config.ProviderConfig, log logger.Logger) Adapter {
	return &httpAdapter{
		endpoint: newEndpoint(EmailProviderName, cfg, log),
		contract: emailContract{apiKey: cfg.APIKey},
	}
}

type emailContract struct {
	apiKey string
}

func (c emailContract) buildRequest(q models.Query) (*httpclient.Request, error) {
	if q.Email == nil || q.Email.Email == "" {
		return nil, errMissingVariant
	}
	return &httpclient.Request{
		Path: "email-finder",
		Query: url.Values{
			"email":   {q.Email.Email},
			"api_key": {c.apiKey},
		},
	}, nil
}

type hunterResponse struct {
	Data *struct {
		Email       string          `json:"email"`
		FirstName   string          `json:"first_name"`
		LastName    string          `json:"last_name"`
		Confidence  *int            `json:"confidence"`
		Score       *int            `json:"score"`
		Position    string          `json:"position"`
		Company     string          `json:"company"`
		Phone       string          `json:"phone"`
		PhoneNumber string          `json:"phone_number"`
		Sources     json.RawMessage `json:"sources"`
	} `json:"data"`
}

// extract yields at most one record.
func (emailContract) extract(body []byte) ([]models.ResultItem, error) {
	var resp hunterResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	d := resp.Data
	if d == nil || d.Email == "" {
		return []models.ResultItem{}, nil
	}

	item := models.ResultItem{"type": string(models.KindEmailMatch)}
	item.Set("email", d.Email)
	item.Set("firstName", d.FirstName)
	item.Set("lastName", d.LastName)
	// name is the shared display field; scoring weighs it like any other source's.
	item.Set("name", strings.TrimSpace(d.FirstName+" "+d.LastName))
	item.Set("position", d.Position)
	item.Set("company", d.Company)
	item.Set("phone", firstNonEmpty(d.Phone, d.PhoneNumber))
	if d.Confidence != nil {
		item["confidence"] = *d.Confidence
	} else if d.Score != nil {
		item["confidence"] = *d.Score
	}
	if sources := decodeList(d.Sources); len(sources) > 0 {
		item["sources"] = sources
	}
	return []models.ResultItem{item}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// decodeList returns raw as a generic list, or nil when it is absent or not
// an array.
func decodeList(raw json.RawMessage) []interface{} {
	if len(raw) == 0 {
		return nil
	}
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

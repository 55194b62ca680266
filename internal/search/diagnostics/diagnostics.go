// internal/search/diagnostics/diagnostics.go

// Package diagnostics checks the upstream providers and backing stores and
// summarizes their health.
package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"people-search/internal/common/config"
	"people-search/internal/common/logger"
	"people-search/internal/models"
	"people-search/internal/search/providers"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

type Overall string

const (
	OverallHealthy  Overall = "HEALTHY"
	OverallDegraded Overall = "DEGRADED"
	OverallCritical Overall = "CRITICAL"
)

// Check is one connectivity test. A non-empty SkipReason skips it without running.
// A failed Critical check makes the whole report CRITICAL.
type Check struct {
	Name       string
	Critical   bool
	SkipReason string
	Run        func(ctx context.Context) (details string, err error)
}

type Result struct {
	Name           string `json:"testName"`
	Status         Status `json:"status"`
	Details        string `json:"details"`
	ResponseTimeMs int64  `json:"responseTime,omitempty"`
	Error          string `json:"errorMessage,omitempty"`
	critical       bool
}

type Report struct {
	Timestamp     time.Time `json:"timestamp"`
	TotalTests    int       `json:"totalTests"`
	Passed        int       `json:"passed"`
	Failed        int       `json:"failed"`
	Skipped       int       `json:"skipped"`
	Results       []Result  `json:"results"`
	OverallStatus Overall   `json:"overallStatus"`
}

type Runner struct {
	checks  []Check
	timeout time.Duration
	log     logger.Logger
}

// NewRunner runs every check under timeout.
func NewRunner(checks []Check, timeout time.Duration, log logger.Logger) *Runner {
	return &Runner{
		checks:  checks,
		timeout: timeout,
		log:     log.WithFields(map[string]interface{}{"component": "diagnostics"}),
	}
}

// Run executes the checks concurrently. Results keep check order.
func (r *Runner) Run(ctx context.Context) *Report {
	results := make([]Result, len(r.checks))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range r.checks {
		g.Go(func() error {
			results[i] = r.runOne(gctx, c)
			return nil
		})
	}
	_ = g.Wait()

	report := Summarize(results)
	r.log.Info("diagnostics finished", map[string]interface{}{
		"overallStatus": report.OverallStatus,
		"passed":        report.Passed,
		"failed":        report.Failed,
		"skipped":       report.Skipped,
	})
	return report
}

func (r *Runner) runOne(ctx context.Context, c Check) Result {
	res := Result{Name: c.Name, critical: c.Critical}
	if c.SkipReason != "" {
		res.Status = StatusSkip
		res.Details = c.SkipReason
		return res
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	details, err := c.Run(ctx)
	res.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		res.Status = StatusFail
		res.Details = "Check failed"
		res.Error = err.Error()
		return res
	}
	res.Status = StatusPass
	res.Details = details
	return res
}

// Summarize counts results. Any failure degrades the report; a failed
// critical check makes it CRITICAL.
func Summarize(results []Result) *Report {
	report := &Report{
		Timestamp:     time.Now().UTC(),
		TotalTests:    len(results),
		Results:       results,
		OverallStatus: OverallHealthy,
	}
	critical := false
	for _, res := range results {
		switch res.Status {
		case StatusPass:
			report.Passed++
		case StatusFail:
			report.Failed++
			critical = critical || res.critical
		case StatusSkip:
			report.Skipped++
		}
	}
	if report.Failed > 0 {
		report.OverallStatus = OverallDegraded
		if critical {
			report.OverallStatus = OverallCritical
		}
	}
	return report
}

// RenderText renders report for terminals and logs.
func RenderText(report *Report) string {
	var b strings.Builder
	b.WriteString("PEOPLE SEARCH - PROVIDER DIAGNOSTICS\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Overall Status: %s\n", report.OverallStatus)
	fmt.Fprintf(&b, "Total Tests: %d\n", report.TotalTests)
	fmt.Fprintf(&b, "Passed: %d\n", report.Passed)
	fmt.Fprintf(&b, "Failed: %d\n", report.Failed)
	fmt.Fprintf(&b, "Skipped: %d\n\n", report.Skipped)
	b.WriteString("DETAILED RESULTS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")

	for _, res := range report.Results {
		fmt.Fprintf(&b, "[%s] %s\n", res.Status, res.Name)
		fmt.Fprintf(&b, "   Details: %s\n", res.Details)
		if res.ResponseTimeMs > 0 {
			fmt.Fprintf(&b, "   Response Time: %dms\n", res.ResponseTimeMs)
		}
		if res.Error != "" {
			fmt.Fprintf(&b, "   Error: %s\n", res.Error)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// providerQueries are valid inputs for each provider.
var providerQueries = []struct {
	name  string
	kind  providers.Kind
	query models.Query
}{
	{"Email Provider Connectivity", providers.KindEmail, models.NewQuery(models.SearchTypeEmail,
		models.QueryFields{Email: "test@example.com"})},
	{"Phone Provider Connectivity", providers.KindPhone, models.NewQuery(models.SearchTypePhone,
		models.QueryFields{PhoneNumber: "+14158586273"})},
	{"Address Provider Connectivity", providers.KindAddress, models.NewQuery(models.SearchTypeAddress,
		models.QueryFields{Address: "1600 Amphitheatre Pkwy", City: "Mountain View", State: "CA"})},
	{"Name Search Connectivity", providers.KindName, models.NewQuery(models.SearchTypeName,
		models.QueryFields{FirstName: "John", LastName: "Smith", City: "New York", State: "NY"})},
}

// ProviderChecks builds one check per single-provider adapter. Providers
// without credentials are skipped.
func ProviderChecks(cfg config.ProvidersConfig, selector *providers.Selector) []Check {
	configured := map[providers.Kind]bool{
		providers.KindEmail:   cfg.Email.HasCredentials(),
		providers.KindPhone:   cfg.Phone.HasCredentials(),
		providers.KindAddress: cfg.Address.HasCredentials(),
		providers.KindName:    cfg.Address.HasCredentials() && cfg.PeopleSearch.HasCredentials(),
	}

	checks := make([]Check, 0, len(providerQueries))
	for _, p := range providerQueries {
		adapter := selector.ForKind(p.kind)
		check := Check{
			Name: p.name,
			Run: func(ctx context.Context) (string, error) {
				res, err := adapter.Search(ctx, p.query)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s responded with %d result(s)", adapter.Name(), len(res.Flatten())), nil
			},
		}
		if !configured[p.kind] {
			check.SkipReason = fmt.Sprintf("%s credentials not configured", adapter.Name())
		}
		checks = append(checks, check)
	}
	return checks
}

// PingCheck wraps a store health ping.
func PingCheck(name string, critical bool, ping func(ctx context.Context) error) Check {
	return Check{
		Name:     name,
		Critical: critical,
		Run: func(ctx context.Context) (string, error) {
			if err := ping(ctx); err != nil {
				return "", err
			}
			return "Connection successful", nil
		},
	}
}

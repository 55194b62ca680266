// internal/search/validator/report.go
package validator

import (
	"fmt"
	"strings"

	"people-search/internal/models"
)

// Report validates q and renders the human readable compliance report.
func Report(q models.Query) string {
	return RenderReport(q.Type, Validate(q))
}

// RenderReport renders an already computed result.
func RenderReport(searchType models.SearchType, r *models.ValidationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "API Compliance Report for %s Search\n", strings.ToUpper(string(searchType)))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	if r.IsValid {
		b.WriteString("Status: ✓ VALID\n\n")
	} else {
		b.WriteString("Status: ✗ INVALID\n\n")
	}

	if r.FormattedValue != "" {
		format := r.APIFormat
		if format == "" {
			format = r.FormattedValue
		}
		fmt.Fprintf(&b, "API Format: %s\n\n", format)
	}

	writeList(&b, "Errors", r.Errors)
	writeList(&b, "Warnings", r.Warnings)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
	b.WriteString("\n")
}

package reporter

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// GenerateMarkdown creates a Markdown report with one section per URL.
func (r *Reporter) GenerateMarkdown(outputPath string) error {
	var b strings.Builder
	succeeded, failed := r.GetStats()

	b.WriteString("# SiteIntel Extraction Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("January 2, 2006 15:04:05"))
	b.WriteString("| Total | Succeeded | Failed |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d |\n\n", len(r.records), succeeded, failed)

	for _, record := range r.records {
		fmt.Fprintf(&b, "## %s\n\n", record.URL)
		if record.Result == nil {
			fmt.Fprintf(&b, "**Failed:** %s\n\n", mdCell(record.Error))
			continue
		}
		res := record.Result
		if res.CompanyInfo.Name != "" {
			fmt.Fprintf(&b, "**Company:** %s\n\n", mdCell(res.CompanyInfo.Name))
		}

		b.WriteString("| Field | Values |\n|---|---|\n")
		writeRow(&b, "Phones", res.Phones)
		writeRow(&b, "Emails", res.Emails)
		writeRow(&b, "Addresses", res.Addresses)
		writeRow(&b, "Social", socialLinks(res))
		writeRow(&b, "WhatsApp", whatsAppNumbers(res))
		b.WriteString("\n")
	}

	if err := os.WriteFile(outputPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return nil
}

func writeRow(b *strings.Builder, field string, values []string) {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = mdCell(v)
	}
	value := strings.Join(cells, "<br>")
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "| %s | %s |\n", field, value)
}

// mdCell keeps a value on one table row.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

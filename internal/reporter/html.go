package reporter

import (
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"time"
)

// GenerateHTML creates an HTML report. Every value taken from a scraped page
// is escaped before it is written.
func (r *Reporter) GenerateHTML(outputPath string) error {
	var b strings.Builder
	succeededCount, failedCount := r.GetStats()

	// Write HTML header
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SiteIntel Extraction Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        h1, h2, h3 { color: #2c3e50; }
        .container { max-width: 1200px; margin: 0 auto; }
        .summary { background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .stats { display: flex; gap: 20px; margin: 20px 0; }
        .stat-box { flex: 1; padding: 15px; border-radius: 5px; text-align: center; }
        .succeeded { background-color: #d4edda; color: #155724; }
        .failed { background-color: #f8d7da; color: #721c24; }
        .total { background-color: #e2e3e5; color: #383d41; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; vertical-align: top; }
        th { background-color: #f2f2f2; }
        tr:hover { background-color: #f5f5f5; }
        .badge { display: inline-block; padding: 3px 7px; border-radius: 3px; font-size: 12px; margin: 0 5px 3px 0; }
        .badge-danger { background-color: #f8d7da; color: #721c24; }
        .badge-social { background-color: #cce5ff; color: #004085; }
    </style>
</head>
<body>
    <div class="container">
        <h1>SiteIntel Extraction Report</h1>
        <div class="summary">
            <p>Report generated on: ` + time.Now().Format("January 2, 2006 15:04:05") + `</p>
            <p>Total URLs processed: ` + strconv.Itoa(len(r.records)) + `</p>
        </div>

        <div class="stats">
            <div class="stat-box succeeded">
                <h3>Succeeded</h3>
                <p>` + strconv.Itoa(succeededCount) + `</p>
            </div>
            <div class="stat-box failed">
                <h3>Failed</h3>
                <p>` + strconv.Itoa(failedCount) + `</p>
            </div>
            <div class="stat-box total">
                <h3>Total</h3>
                <p>` + strconv.Itoa(len(r.records)) + `</p>
            </div>
        </div>

        <h2>Extracted Contacts</h2>
        <table>
            <tr>
                <th>URL</th>
                <th>Company</th>
                <th>Phones</th>
                <th>Emails</th>
                <th>Addresses</th>
                <th>Social</th>
                <th>Time</th>
            </tr>`)

	for _, record := range r.records {
		if record.Result == nil {
			continue
		}
		res := record.Result

		social := ""
		for _, link := range socialLinks(res) {
			social += `<span class="badge badge-social">` + html.EscapeString(link) + `</span>`
		}
		for _, number := range whatsAppNumbers(res) {
			social += `<span class="badge badge-social">whatsapp: ` + html.EscapeString(number) + `</span>`
		}

		b.WriteString(`
            <tr>
                <td>` + html.EscapeString(record.URL) + `</td>
                <td>` + html.EscapeString(res.CompanyInfo.Name) + `</td>
                <td>` + escapeJoin(res.Phones) + `</td>
                <td>` + escapeJoin(res.Emails) + `</td>
                <td>` + escapeJoin(res.Addresses) + `</td>
                <td>` + social + `</td>
                <td>` + strconv.FormatInt(record.Duration.Milliseconds(), 10) + `ms</td>
            </tr>`)
	}

	b.WriteString(`
        </table>

        <h2>Failed URLs</h2>
        <table>
            <tr>
                <th>URL</th>
                <th>Status</th>
                <th>Error</th>
            </tr>`)

	for _, record := range r.records {
		if record.Result != nil {
			continue
		}
		b.WriteString(`
            <tr>
                <td>` + html.EscapeString(record.URL) + `</td>
                <td><span class="badge badge-danger">Failed</span></td>
                <td>` + html.EscapeString(record.Error) + `</td>
            </tr>`)
	}

	b.WriteString(`
        </table>
    </div>
</body>
</html>`)

	if err := os.WriteFile(outputPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

func escapeJoin(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = html.EscapeString(v)
	}
	return strings.Join(escaped, "<br>")
}

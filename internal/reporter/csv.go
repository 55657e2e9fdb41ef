package reporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"URL", "Status", "CompanyName", "Title", "Phones", "Emails", "Addresses",
	"Social", "WhatsApp", "DurationMs", "Error",
}

// GenerateCSV creates a CSV report. Multi-valued columns are joined with "|".
func (r *Reporter) GenerateCSV(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range r.records {
		var name, title, phones, emails, addresses string
		if res := record.Result; res != nil {
			name = res.CompanyInfo.Name
			title = strings.ReplaceAll(res.CompanyInfo.Title, "\n", " ")
			phones = strings.Join(res.Phones, "|")
			emails = strings.Join(res.Emails, "|")
			addresses = strings.Join(res.Addresses, "|")
		}

		row := []string{
			record.URL,
			record.Status,
			name,
			title,
			phones,
			emails,
			addresses,
			strings.Join(socialLinks(record.Result), "|"),
			strings.Join(whatsAppNumbers(record.Result), "|"),
			strconv.FormatInt(record.Duration.Milliseconds(), 10),
			record.Error,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return nil
}

// Package reporter writes bulk extraction results to disk.
package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Sla0ui/siteintel/internal/models"
)

// Reporter handles generating bulk reports in various formats
type Reporter struct {
	records   []*models.BulkRecord
	outputDir string
}

// New creates a new Reporter instance
func New(records []*models.BulkRecord, outputDir string) *Reporter {
	return &Reporter{
		records:   records,
		outputDir: outputDir,
	}
}

// NewRecord converts a progress event into a record. Other event types yield nil.
func NewRecord(ev models.BulkEvent, duration time.Duration) *models.BulkRecord {
	if ev.Type != models.EventProgress {
		return nil
	}
	return &models.BulkRecord{
		URL:      ev.URL,
		Status:   ev.Status,
		Result:   ev.Result,
		Error:    ev.Error,
		Duration: duration,
	}
}

// WriteResultsToFiles writes the URL lists, a CSV log and the JSON results
// into the output directory, replacing files from earlier runs.
func (r *Reporter) WriteResultsToFiles() error {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var succeeded, failed []string
	for _, record := range r.records {
		if record.Status == models.StatusSuccess {
			succeeded = append(succeeded, record.URL)
		} else {
			failed = append(failed, fmt.Sprintf("%s (%s)", record.URL, record.Error))
		}
	}

	if err := writeLines(filepath.Join(r.outputDir, "succeeded_urls.txt"), succeeded); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(r.outputDir, "failed_urls.txt"), failed); err != nil {
		return err
	}
	if err := r.GenerateCSV(filepath.Join(r.outputDir, "extraction_log.csv")); err != nil {
		return err
	}
	return r.GenerateJSON(filepath.Join(r.outputDir, "extraction_results.json"))
}

// GenerateReport creates a report in each of the comma-separated formats.
// Unknown formats are rejected before anything is written.
func (r *Reporter) GenerateReport(outputPath, format string) error {
	formats := strings.Split(format, ",")
	outputBase := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))

	writers := make([]func() error, 0, len(formats))
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "json":
			writers = append(writers, func() error { return r.GenerateJSON(outputBase + ".json") })
		case "csv":
			writers = append(writers, func() error { return r.GenerateCSV(outputBase + ".csv") })
		case "html":
			writers = append(writers, func() error { return r.GenerateHTML(outputBase + ".html") })
		case "markdown", "md":
			writers = append(writers, func() error { return r.GenerateMarkdown(outputBase + ".md") })
		case "":
		default:
			return fmt.Errorf("unsupported report format %q", f)
		}
	}

	if dir := filepath.Dir(outputBase); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	for _, write := range writers {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

// GetStats returns succeeded and failed counts
func (r *Reporter) GetStats() (succeeded, failed int) {
	for _, record := range r.records {
		if record.Status == models.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	return
}

// socialLinks lists found profiles as "platform: url", sorted by platform.
func socialLinks(result *models.ExtractionResult) []string {
	if result == nil {
		return nil
	}
	profiles := result.SocialMedia.Profiles()
	links := make([]string, 0, len(profiles))
	for platform, link := range profiles {
		links = append(links, platform+": "+link)
	}
	sort.Strings(links)
	return links
}

func whatsAppNumbers(result *models.ExtractionResult) []string {
	if result == nil {
		return nil
	}
	numbers := make([]string, 0, len(result.SocialMedia.WhatsApp))
	for _, c := range result.SocialMedia.WhatsApp {
		numbers = append(numbers, c.Number)
	}
	return numbers
}

func writeLines(filename string, lines []string) error {
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", filepath.Base(filename), err)
	}
	return nil
}

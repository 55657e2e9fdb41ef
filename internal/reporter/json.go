package reporter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Sla0ui/siteintel/internal/models"
)

// jsonReport is the document written by GenerateJSON.
type jsonReport struct {
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Records   []*models.BulkRecord `json:"records"`
}

// GenerateJSON creates a JSON report
func (r *Reporter) GenerateJSON(outputPath string) error {
	succeeded, failed := r.GetStats()
	records := r.records
	if records == nil {
		records = []*models.BulkRecord{}
	}
	report := jsonReport{
		Total:     len(r.records),
		Succeeded: succeeded,
		Failed:    failed,
		Records:   records,
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

package security

import (
	"math"

	"github.com/Sla0ui/siteintel/internal/models"
)

// Score weights. The header share is spread evenly over the checklist, so
// adding or removing a checklist entry changes the per-header weight.
const (
	tlsPoints    = 25
	headerPoints = 75
	maxScore     = 100
)

// ComputeScore returns the 0-100 security score for a TLS validity flag and a
// header audit. Only checklist headers count towards the score.
func ComputeScore(tlsValid bool, audit map[string]models.HeaderCheck) int {
	score := 0.0
	if tlsValid {
		score += tlsPoints
	}

	present := 0
	for _, rule := range Checklist {
		if audit[rule.Name].Present {
			present++
		}
	}
	score += float64(present) / float64(len(Checklist)) * headerPoints

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > maxScore {
		return maxScore
	}
	return rounded
}

// ComputeGrade maps a score to a letter grade.
func ComputeGrade(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Package scoring implements the grading engine: component score formulas,
// letter-grade classification and the derived-field pipeline for student
// records.
package scoring

import "github.com/verba-edu/scholarship-api/internal/models"

// GradeEnglish classifies an English point using the English band table.
// Bands are half-open and total over the real line: any score below 40,
// including negative values, is an F.
func GradeEnglish(score float64) models.LetterGrade {
	switch {
	case score >= 70:
		return models.GradeA
	case score >= 60:
		return models.GradeB
	case score >= 50:
		return models.GradeC
	case score >= 40:
		return models.GradeD
	default:
		return models.GradeF
	}
}

// GradeOther classifies ADIAK, History and ICT points, which share one band
// table with a stricter floor than English.
func GradeOther(score float64) models.LetterGrade {
	switch {
	case score >= 91:
		return models.GradeA
	case score >= 81:
		return models.GradeB
	case score >= 71:
		return models.GradeC
	case score >= 61:
		return models.GradeD
	default:
		return models.GradeF
	}
}

package models

// LetterGrade is a classified subject result.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeD LetterGrade = "D"
	GradeF LetterGrade = "F"
)

// Failing reports whether the grade disqualifies a student from any
// scholarship tier.
func (g LetterGrade) Failing() bool {
	return g == GradeD || g == GradeF
}

// ScholarshipType enumerates the three stipend tiers.
type ScholarshipType string

const (
	// ScholarshipTop requires straight A grades.
	ScholarshipTop ScholarshipType = "TOP"
	// ScholarshipHighAchiever requires one or two A grades and no grade below C.
	ScholarshipHighAchiever ScholarshipType = "HIGH_ACHIEVER"
	// ScholarshipStandard requires only B and C grades.
	ScholarshipStandard ScholarshipType = "STANDARD"
)

// DisplayName returns the institutional (Azerbaijani) tier name.
func (s ScholarshipType) DisplayName() string {
	switch s {
	case ScholarshipTop:
		return "Əlaçı təqaüdü"
	case ScholarshipHighAchiever:
		return "Zərbəçi"
	case ScholarshipStandard:
		return "Adi təqaüd"
	default:
		return string(s)
	}
}

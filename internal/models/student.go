package models

import "time"

// Student represents one applicant competing for a scholarship within a
// program. Derived fields (average, grades, cancelled, rank, scholarship) are
// never set directly: the scoring pipeline and the allocator own them.
type Student struct {
	ID        string `db:"id" json:"id"`
	ProgramID int    `db:"program_id" json:"program_id"`
	Name      string `db:"name" json:"name"`
	Surname   string `db:"surname" json:"surname"`

	EnglishPoint float64 `db:"english_point" json:"english_point"`
	AdiakPoint   float64 `db:"adiak_point" json:"adiak_point"`
	HistoryPoint float64 `db:"history_point" json:"history_point"`
	IctPoint     float64 `db:"ict_point" json:"ict_point"`

	AverageScore float64 `db:"average_score" json:"average_score"`
	Cancelled    bool    `db:"cancelled" json:"cancelled"`

	EnglishGrade *LetterGrade `db:"english_grade" json:"english_grade,omitempty"`
	AdiakGrade   *LetterGrade `db:"adiak_grade" json:"adiak_grade,omitempty"`
	HistoryGrade *LetterGrade `db:"history_grade" json:"history_grade,omitempty"`
	IctGrade     *LetterGrade `db:"ict_grade" json:"ict_grade,omitempty"`

	Rank            *int             `db:"rank" json:"rank,omitempty"`
	ScholarshipType *ScholarshipType `db:"scholarship_type" json:"scholarship_type,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ThirdSubjectPoint returns the point of the subject relevant to the group.
func (s Student) ThirdSubjectPoint(group SubjectGroup) float64 {
	if group.UsesADIAK() {
		return s.AdiakPoint
	}
	return s.HistoryPoint
}

// RelevantGrades returns the graded triple for the student's subject group.
// Ungraded entries (unknown program) are omitted.
func (s Student) RelevantGrades(group SubjectGroup) []LetterGrade {
	grades := make([]LetterGrade, 0, 3)
	if s.EnglishGrade != nil {
		grades = append(grades, *s.EnglishGrade)
	}
	if group.UsesADIAK() {
		if s.AdiakGrade != nil {
			grades = append(grades, *s.AdiakGrade)
		}
	} else if s.HistoryGrade != nil {
		grades = append(grades, *s.HistoryGrade)
	}
	if s.IctGrade != nil {
		grades = append(grades, *s.IctGrade)
	}
	return grades
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ProgramID int
	Page      int
	PageSize  int
}

// ProgramResult groups allocated students of one program for presentation.
type ProgramResult struct {
	Program  ProgramDefinition `json:"program"`
	Students []Student         `json:"students"`
}

// AllocationSummary reports the outcome of one allocator pass.
type AllocationSummary struct {
	Programs         int       `json:"programs"`
	StudentsRanked   int       `json:"students_ranked"`
	ScholarsAssigned int       `json:"scholars_assigned"`
	RunAt            time.Time `json:"run_at"`
}

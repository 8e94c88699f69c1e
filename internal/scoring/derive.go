package scoring

import "github.com/verba-edu/scholarship-api/internal/models"

// Derive recomputes every derived field of a student from its raw points:
// the three-subject average, the letter grades for the group's subjects and
// the cancellation flag (any relevant grade of D or F). Rank and scholarship
// are reset because any change to raw points invalidates the previous
// allocation pass.
//
// Callers must invoke Derive after every change to points or program; the
// fields are never recomputed implicitly.
func Derive(s *models.Student, program models.ProgramDefinition, known bool) {
	s.Rank = nil
	s.ScholarshipType = nil

	if !known {
		// Unknown program: no subject group, nothing to grade.
		s.AverageScore = 0
		s.EnglishGrade = nil
		s.AdiakGrade = nil
		s.HistoryGrade = nil
		s.IctGrade = nil
		s.Cancelled = false
		return
	}

	third := s.ThirdSubjectPoint(program.Group)
	s.AverageScore = (s.EnglishPoint + third + s.IctPoint) / 3

	english := GradeEnglish(s.EnglishPoint)
	ict := GradeOther(s.IctPoint)
	s.EnglishGrade = &english
	s.IctGrade = &ict

	if program.Group.UsesADIAK() {
		adiak := GradeOther(s.AdiakPoint)
		s.AdiakGrade = &adiak
		s.HistoryGrade = nil
	} else {
		history := GradeOther(s.HistoryPoint)
		s.HistoryGrade = &history
		s.AdiakGrade = nil
	}

	s.Cancelled = false
	for _, g := range s.RelevantGrades(program.Group) {
		if g.Failing() {
			s.Cancelled = true
			break
		}
	}
}

package models

// SubjectGroup identifies which trio of subjects a program grades.
type SubjectGroup string

const (
	// GroupRI programs grade English, ADIAK and ICT.
	GroupRI SubjectGroup = "RI"
	// GroupRK programs grade English, History and ICT.
	GroupRK SubjectGroup = "RK"
	// GroupTwo programs grade English, History and ICT (second admission wave).
	GroupTwo SubjectGroup = "GROUP_2"
)

// UsesADIAK reports whether the group's third subject is ADIAK rather than History.
func (g SubjectGroup) UsesADIAK() bool {
	return g == GroupRI
}

// ProgramDefinition describes one academic program (ixtisas) and its seat plan.
type ProgramDefinition struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	FreeSeats    int          `json:"free_seats"`
	PayableSeats int          `json:"payable_seats"`
	Group        SubjectGroup `json:"group"`
}

// Subjects returns the display names of the three graded subjects.
func (p ProgramDefinition) Subjects() []string {
	if p.Group.UsesADIAK() {
		return []string{"İngilis dili", "ADIAK", "ICT"}
	}
	return []string{"İngilis dili", "Tarix", "ICT"}
}

// Package importer maps loosely-named CSV exports onto the canonical student
// record fields. Institutions hand over spreadsheets with wildly varying
// header names, so mapping is best-effort substring matching against a fixed
// alias table; only program, name and surname are mandatory.
package importer

import "strings"

// Canonical field names recognised by the import pipeline.
const (
	FieldProgramID = "ixtisas_id"
	FieldName      = "name"
	FieldSurname   = "surname"

	FieldEngAssessment    = "eng_assessment"
	FieldEngWriting       = "eng_writing"
	FieldEngP1            = "eng_p1"
	FieldEngP2            = "eng_p2"
	FieldEngP3            = "eng_p3"
	FieldEngParticipation = "eng_participation"
	FieldEngMidterm       = "eng_midterm"

	FieldICTQuiz         = "ict_quiz"
	FieldICTLab          = "ict_lab"
	FieldICTPresentation = "ict_presentation"
	FieldICTExam         = "ict_exam"

	FieldADIAKPresentation  = "adiak_presentation"
	FieldADIAKParticipation = "adiak_participation"
	FieldADIAKMidterm       = "adiak_midterm"
	FieldADIAKFinal         = "adiak_final"

	FieldHistorySeminar      = "history_seminar"
	FieldHistoryInteractive  = "history_interactive"
	FieldHistoryPresentation = "history_presentation"
	FieldHistoryMidterm      = "history_midterm"
	FieldHistoryFinal        = "history_final"
)

// RequiredFields must all resolve to a column or the import aborts.
var RequiredFields = []string{FieldProgramID, FieldName, FieldSurname}

// fieldOrder keeps mapping deterministic (map iteration order is not).
var fieldOrder = []string{
	FieldProgramID, FieldName, FieldSurname,
	FieldEngAssessment, FieldEngWriting, FieldEngP1, FieldEngP2, FieldEngP3,
	FieldEngParticipation, FieldEngMidterm,
	FieldICTQuiz, FieldICTLab, FieldICTPresentation, FieldICTExam,
	FieldADIAKPresentation, FieldADIAKParticipation, FieldADIAKMidterm, FieldADIAKFinal,
	FieldHistorySeminar, FieldHistoryInteractive, FieldHistoryPresentation,
	FieldHistoryMidterm, FieldHistoryFinal,
}

var aliases = map[string][]string{
	FieldProgramID: {"ixtisas", "ixtisas_id", "ixtisasid", "specialty", "specialty_id", "specialtyid", "id"},
	FieldName:      {"name", "ad", "firstname", "first_name", "first name"},
	FieldSurname:   {"surname", "soyad", "lastname", "last_name", "last name", "family name"},

	FieldEngAssessment:    {"eng_assessment", "english assessment", "assessment", "eng assessment", "english_assessment"},
	FieldEngWriting:       {"eng_writing", "english writing", "writing", "eng writing", "english_writing", "graded writing"},
	FieldEngP1:            {"eng_p1", "english p1", "p1", "presentation 1", "presentation1", "eng presentation 1"},
	FieldEngP2:            {"eng_p2", "english p2", "p2", "presentation 2", "presentation2", "eng presentation 2"},
	FieldEngP3:            {"eng_p3", "english p3", "p3", "presentation 3", "presentation3", "eng presentation 3"},
	FieldEngParticipation: {"eng_participation", "english participation", "participation", "eng participation"},
	FieldEngMidterm:       {"eng_midterm", "english midterm", "midterm", "eng midterm", "english_midterm"},

	FieldICTQuiz:         {"ict_quiz", "ict quiz", "quiz", "ikt quiz"},
	FieldICTLab:          {"ict_lab", "ict lab", "lab", "laboratory", "laboratoriya", "ikt lab"},
	FieldICTPresentation: {"ict_presentation", "ict presentation", "ict prez", "ikt presentation", "ikt prez"},
	FieldICTExam:         {"ict_exam", "ict exam", "ict imtahan", "ikt exam", "ikt imtahan"},

	FieldADIAKPresentation:  {"adiak_presentation", "adiak presentation", "adiak prez"},
	FieldADIAKParticipation: {"adiak_participation", "adiak participation", "adiak aktivlik"},
	FieldADIAKMidterm:       {"adiak_midterm", "adiak midterm"},
	FieldADIAKFinal:         {"adiak_final", "adiak final"},

	FieldHistorySeminar:      {"history_seminar", "history seminar", "tarix seminar", "seminar"},
	FieldHistoryInteractive:  {"history_interactive", "history interactive", "tarix interactive", "interactive"},
	FieldHistoryPresentation: {"history_presentation", "history presentation", "tarix presentation", "tarix prez"},
	FieldHistoryMidterm:      {"history_midterm", "history midterm", "tarix midterm"},
	FieldHistoryFinal:        {"history_final", "history final", "tarix final"},
}

// ColumnMap binds canonical field names to zero-based column indexes.
type ColumnMap map[string]int

// MapColumns identifies header columns by case-insensitive substring matching
// against the alias table. The first alias that matches any column wins, and
// the first matching column wins, so ambiguous headers resolve left to right.
func MapColumns(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	columns := make(ColumnMap)
	for _, field := range fieldOrder {
	next:
		for idx, header := range normalized {
			for _, alias := range aliases[field] {
				if strings.Contains(header, alias) {
					columns[field] = idx
					break next
				}
			}
		}
	}
	return columns
}

// MissingRequired lists required fields absent from the column map.
func (m ColumnMap) MissingRequired() []string {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := m[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// MappedFields lists the canonical fields resolved by the map, in canonical
// order.
func (m ColumnMap) MappedFields() []string {
	fields := make([]string, 0, len(m))
	for _, field := range fieldOrder {
		if _, ok := m[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

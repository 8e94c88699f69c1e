package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapColumnsAliasMatching(t *testing.T) {
	headers := []string{"Specialty", "First Name", "Last Name", "quiz", "lab"}
	columns := MapColumns(headers)

	assert.Equal(t, ColumnMap{
		FieldProgramID: 0,
		FieldName:      1,
		FieldSurname:   2,
		FieldICTQuiz:   3,
		FieldICTLab:    4,
	}, columns)
	assert.Empty(t, columns.MissingRequired())
}

func TestMapColumnsCaseAndWhitespaceInsensitive(t *testing.T) {
	headers := []string{"  IXTISAS_ID ", "AD", "SOYAD"}
	columns := MapColumns(headers)

	assert.Equal(t, 0, columns[FieldProgramID])
	assert.Equal(t, 1, columns[FieldName])
	assert.Equal(t, 2, columns[FieldSurname])
}

func TestMapColumnsSubstringMatch(t *testing.T) {
	headers := []string{"student ixtisas code", "student name", "student surname", "english midterm exam"}
	columns := MapColumns(headers)

	assert.Equal(t, 0, columns[FieldProgramID])
	assert.Equal(t, 3, columns[FieldEngMidterm])
}

func TestMissingRequired(t *testing.T) {
	columns := MapColumns([]string{"quiz", "lab"})
	missing := columns.MissingRequired()
	require.Len(t, missing, 3)
	assert.Contains(t, missing, FieldProgramID)
	assert.Contains(t, missing, FieldName)
	assert.Contains(t, missing, FieldSurname)
}

func TestMappedFieldsCanonicalOrder(t *testing.T) {
	columns := MapColumns([]string{"lab", "ixtisas_id", "ad", "soyad"})
	assert.Equal(t, []string{FieldProgramID, FieldName, FieldSurname, FieldICTLab}, columns.MappedFields())
}

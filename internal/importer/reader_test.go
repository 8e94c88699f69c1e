package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReaderStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFixtisas_id,ad,soyad\n250104,Aysel,Aliyeva\n"
	r := NewReader(strings.NewReader(input))

	headers, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "ixtisas_id", headers[0])
}

func TestNewReaderToleratesRaggedRows(t *testing.T) {
	input := "a,b,c\n1,2\n1,2,3,4\n"
	r := NewReader(strings.NewReader(input))

	_, err := r.Read()
	require.NoError(t, err)
	short, err := r.Read()
	require.NoError(t, err)
	assert.Len(t, short, 2)
	long, err := r.Read()
	require.NoError(t, err)
	assert.Len(t, long, 4)
}

func TestRowString(t *testing.T) {
	columns := ColumnMap{FieldName: 0, FieldSurname: 1}
	row := NewRow(columns, []string{"  Aysel ", "Aliyeva"})

	assert.Equal(t, "Aysel", row.String(FieldName))
	assert.Equal(t, "Aliyeva", row.String(FieldSurname))
	assert.Equal(t, "", row.String(FieldICTQuiz))
}

func TestRowStringShortRecord(t *testing.T) {
	columns := ColumnMap{FieldName: 0, FieldSurname: 5}
	row := NewRow(columns, []string{"Aysel"})
	assert.Equal(t, "", row.String(FieldSurname))
}

func TestRowFloat(t *testing.T) {
	columns := ColumnMap{FieldICTQuiz: 0, FieldICTLab: 1, FieldICTExam: 2}
	row := NewRow(columns, []string{"87.5", "", "abc"})

	v, err := row.Float(FieldICTQuiz)
	require.NoError(t, err)
	assert.InDelta(t, 87.5, v, 1e-9)

	v, err = row.Float(FieldICTLab)
	require.NoError(t, err)
	assert.Zero(t, v)

	// Unmapped fields default to zero without error.
	v, err = row.Float(FieldICTPresentation)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = row.Float(FieldICTExam)
	assert.Error(t, err)
}

func TestRowInt(t *testing.T) {
	columns := ColumnMap{FieldProgramID: 0}

	v, err := NewRow(columns, []string{"250104"}).Int(FieldProgramID)
	require.NoError(t, err)
	assert.Equal(t, 250104, v)

	v, err = NewRow(columns, []string{""}).Int(FieldProgramID)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = NewRow(columns, []string{"25x"}).Int(FieldProgramID)
	assert.Error(t, err)
}

func TestRowEmpty(t *testing.T) {
	columns := ColumnMap{}
	assert.True(t, NewRow(columns, []string{"", "  ", ""}).Empty())
	assert.False(t, NewRow(columns, []string{"", "x"}).Empty())
}

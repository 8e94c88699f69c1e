package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verba-edu/scholarship-api/internal/models"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
)

type mockResultsProvider struct {
	results []models.ProgramResult
	err     error
}

func (m *mockResultsProvider) Results(ctx context.Context, scholarsOnly bool) ([]models.ProgramResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func exportFixture() []models.ProgramResult {
	rank := 1
	top := models.ScholarshipTop
	a := models.GradeA
	return []models.ProgramResult{
		{
			Program: models.ProgramDefinition{ID: 250104, Name: "IT", FreeSeats: 20, Group: models.GroupRI},
			Students: []models.Student{
				{
					ID: "s1", ProgramID: 250104, Name: "Aysel", Surname: "Aliyeva",
					EnglishPoint: 80, AdiakPoint: 92, IctPoint: 95,
					AverageScore: 89, Rank: &rank, ScholarshipType: &top,
					EnglishGrade: &a, AdiakGrade: &a, IctGrade: &a,
				},
			},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	svc := NewExportService(&mockResultsProvider{results: exportFixture()}, nil)

	file, err := svc.Render(context.Background(), FormatCSV, false)
	require.NoError(t, err)
	assert.Equal(t, "scholarship-results.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	assert.True(t, bytes.HasPrefix(file.Content, []byte{0xEF, 0xBB, 0xBF}))
	body := string(file.Content)
	assert.Contains(t, body, "Aliyeva")
	assert.Contains(t, body, "250104 IT")
	assert.Contains(t, body, "A/A/A")
	assert.Contains(t, body, "Əlaçı təqaüdü")
}

func TestRenderPDF(t *testing.T) {
	svc := NewExportService(&mockResultsProvider{results: exportFixture()}, nil)

	file, err := svc.Render(context.Background(), FormatPDF, false)
	require.NoError(t, err)
	assert.Equal(t, "scholarship-results.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}

func TestRenderUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&mockResultsProvider{results: exportFixture()}, nil)

	_, err := svc.Render(context.Background(), "xlsx", false)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRenderPropagatesResultErrors(t *testing.T) {
	svc := NewExportService(&mockResultsProvider{err: errors.New("boom")}, nil)

	_, err := svc.Render(context.Background(), FormatCSV, false)
	assert.Error(t, err)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/models"
	"github.com/verba-edu/scholarship-api/internal/service"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
)

type allocationRepoMock struct {
	students []models.Student
	saved    []models.Student
}

func (m *allocationRepoMock) GetAll(ctx context.Context) ([]models.Student, error) {
	return m.students, nil
}

func (m *allocationRepoMock) SaveAllocation(ctx context.Context, students []models.Student) error {
	m.saved = students
	return nil
}

type cacheMock struct{}

func (cacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}
func (cacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (cacheMock) Delete(ctx context.Context, key string) error { return nil }

func newAllocationHandler(repo *allocationRepoMock) *AllocationHandler {
	allocations := service.NewAllocationService(repo, catalog.Default(), cacheMock{}, nil, time.Minute, nil)
	exports := service.NewExportService(allocations, nil)
	return NewAllocationHandler(allocations, exports)
}

func fixtureStudents() []models.Student {
	a := models.GradeA
	return []models.Student{
		{
			ID: "s1", ProgramID: 250104, AverageScore: 90,
			EnglishGrade: &a, AdiakGrade: &a, IctGrade: &a,
		},
	}
}

func TestAllocationHandlerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &allocationRepoMock{students: fixtureStudents()}
	handler := newAllocationHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/allocations/run", nil)
	c.Request = req

	handler.Run(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.AllocationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.StudentsRanked)
	assert.Equal(t, 1, envelope.Data.ScholarsAssigned)
	assert.Len(t, repo.saved, 1)
}

func TestAllocationHandlerResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rank := 1
	top := models.ScholarshipTop
	repo := &allocationRepoMock{students: []models.Student{
		{ID: "s1", ProgramID: 250104, AverageScore: 90, Rank: &rank, ScholarshipType: &top},
	}}
	handler := newAllocationHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/allocations/results?scholarsOnly=true", nil)
	c.Request = req

	handler.Results(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.ProgramResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, 250104, envelope.Data[0].Program.ID)
	require.Len(t, envelope.Data[0].Students, 1)
}

func TestAllocationHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &allocationRepoMock{students: fixtureStudents()}
	handler := newAllocationHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/allocations/results/export?format=csv", nil)
	c.Request = req

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scholarship-results.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestAllocationHandlerExportUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAllocationHandler(&allocationRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/allocations/results/export?format=xlsx", nil)
	c.Request = req

	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

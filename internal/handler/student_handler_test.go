package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/models"
	"github.com/verba-edu/scholarship-api/internal/service"
)

type studentRepoMock struct {
	created *models.Student
	findErr error
}

func (m *studentRepoMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, nil
}

func (m *studentRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return &models.Student{ID: id}, nil
}

func (m *studentRepoMock) Create(ctx context.Context, student *models.Student) error {
	m.created = student
	return nil
}

func (m *studentRepoMock) Update(ctx context.Context, student *models.Student) error { return nil }
func (m *studentRepoMock) Delete(ctx context.Context, id string) error               { return nil }
func (m *studentRepoMock) DeleteAll(ctx context.Context) error                       { return nil }

type invalidatorMock struct{}

func (invalidatorMock) Invalidate(ctx context.Context) {}

func newStudentHandler(repo *studentRepoMock) *StudentHandler {
	svc := service.NewStudentService(repo, catalog.Default(), invalidatorMock{}, nil, nil)
	return NewStudentHandler(svc)
}

func TestStudentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &studentRepoMock{}
	handler := newStudentHandler(repo)

	body := []byte(`{
		"program_id": 250104,
		"name": "Aysel",
		"surname": "Aliyeva",
		"scores": {
			"english": {"assessment": 80, "writing": 80, "presentation1": 80, "presentation2": 80, "presentation3": 80, "participation": 80, "midterm": 80},
			"ict": {"quiz": 95, "lab": 95, "presentation": 95, "exam": 95},
			"adiak": {"presentation": 92, "participation": 92, "midterm": 92, "final": 92}
		}
	}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.InDelta(t, 80.0, repo.created.EnglishPoint, 1e-9)
	assert.False(t, repo.created.Cancelled)
}

func TestStudentHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&studentRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&studentRepoMock{findErr: sql.ErrNoRows})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

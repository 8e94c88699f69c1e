package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/models"
	"github.com/verba-edu/scholarship-api/internal/scoring"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type allocationInvalidator interface {
	Invalidate(ctx context.Context)
}

// SubjectScoresRequest carries the raw per-course components. Only the block
// relevant to the program's subject group is consulted for the third subject.
type SubjectScoresRequest struct {
	English scoring.EnglishComponents `json:"english"`
	ICT     scoring.ICTComponents     `json:"ict"`
	ADIAK   scoring.ADIAKComponents   `json:"adiak"`
	History scoring.HistoryComponents `json:"history"`
}

// SaveStudentRequest holds payload for creating or fully replacing a student.
// Edits replace every raw input at once; partial updates are not offered
// because derived fields must always be recomputed from a complete input set.
type SaveStudentRequest struct {
	ProgramID int                  `json:"program_id" validate:"required"`
	Name      string               `json:"name" validate:"required"`
	Surname   string               `json:"surname" validate:"required"`
	Scores    SubjectScoresRequest `json:"scores"`
}

// StudentService handles student record use-cases.
type StudentService struct {
	repo        studentRepository
	catalog     *catalog.ProgramCatalog
	allocations allocationInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, programs *catalog.ProgramCatalog, allocations allocationInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, catalog: programs, allocations: allocations, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns one student record.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student from raw component scores.
func (s *StudentService) Create(ctx context.Context, req SaveStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := s.buildStudent(req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.allocations.Invalidate(ctx)
	return student, nil
}

// Update atomically replaces all raw inputs of an existing student, reruns
// the scoring pipeline and voids the previous allocation.
func (s *StudentService) Update(ctx context.Context, id string, req SaveStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := s.buildStudent(req)
	student.ID = existing.ID
	student.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.allocations.Invalidate(ctx)
	return student, nil
}

// Delete removes one student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.allocations.Invalidate(ctx)
	return nil
}

// DeleteAll clears every student record.
func (s *StudentService) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear students")
	}
	s.allocations.Invalidate(ctx)
	return nil
}

// buildStudent combines components into subject points and derives grades,
// average and the cancellation flag. English and ICT are always computed;
// the third subject follows the program's group, and both third-subject
// points stay zero for unknown programs.
func (s *StudentService) buildStudent(req SaveStudentRequest) *models.Student {
	student := &models.Student{
		ProgramID:    req.ProgramID,
		Name:         req.Name,
		Surname:      req.Surname,
		EnglishPoint: scoring.EnglishPoint(req.Scores.English),
		IctPoint:     scoring.ICTPoint(req.Scores.ICT),
	}

	program, known := s.catalog.Lookup(req.ProgramID)
	if known {
		if program.Group.UsesADIAK() {
			student.AdiakPoint = scoring.ADIAKPoint(req.Scores.ADIAK)
		} else {
			student.HistoryPoint = scoring.HistoryPoint(req.Scores.History)
		}
	}

	scoring.Derive(student, program, known)
	return student
}

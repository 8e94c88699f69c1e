package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/importer"
	"github.com/verba-edu/scholarship-api/internal/models"
	"github.com/verba-edu/scholarship-api/internal/scoring"
	"github.com/verba-edu/scholarship-api/pkg/config"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
)

type importRepository interface {
	CreateBatch(ctx context.Context, students []models.Student) error
}

type importMetrics interface {
	ObserveImport(imported, failed int)
}

// RowError reports one rejected CSV row. Row numbers are 1-based and include
// the header, matching what a user sees in a spreadsheet.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarises one committed import batch.
type ImportReport struct {
	Imported     int        `json:"imported"`
	SkippedEmpty int        `json:"skipped_empty"`
	FailedRows   int        `json:"failed_rows"`
	Errors       []RowError `json:"errors,omitempty"`
	MappedFields []string   `json:"mapped_fields"`
}

// ImportPreview shows how a file would be interpreted without persisting it.
type ImportPreview struct {
	Columns      importer.ColumnMap `json:"columns"`
	MappedFields []string           `json:"mapped_fields"`
	RowCount     int                `json:"row_count"`
	FailedRows   int                `json:"failed_rows"`
	Errors       []RowError         `json:"errors,omitempty"`
	Sample       []models.Student   `json:"sample"`
}

const previewSampleSize = 10

// ImportService turns uploaded CSV exports into scored student records.
type ImportService struct {
	repo        importRepository
	catalog     *catalog.ProgramCatalog
	allocations allocationInvalidator
	metrics     importMetrics
	cfg         config.ImportConfig
	logger      *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(repo importRepository, programs *catalog.ProgramCatalog, allocations allocationInvalidator, metrics importMetrics, cfg config.ImportConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{repo: repo, catalog: programs, allocations: allocations, metrics: metrics, cfg: cfg, logger: logger}
}

// Import parses the CSV stream, persists every parseable row in one
// transaction and reports per-row failures. A malformed row never aborts the
// batch; a missing required column does.
func (s *ImportService) Import(ctx context.Context, file io.Reader) (*ImportReport, error) {
	parsed, err := s.parse(file)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateBatch(ctx, parsed.students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist imported students")
	}
	s.allocations.Invalidate(ctx)
	if s.metrics != nil {
		s.metrics.ObserveImport(len(parsed.students), len(parsed.errors))
	}

	report := &ImportReport{
		Imported:     len(parsed.students),
		SkippedEmpty: parsed.skippedEmpty,
		FailedRows:   len(parsed.errors),
		Errors:       s.capErrors(parsed.errors),
		MappedFields: parsed.columns.MappedFields(),
	}
	s.logger.Info("csv import complete",
		zap.Int("imported", report.Imported),
		zap.Int("failed_rows", report.FailedRows),
		zap.Int("skipped_empty", report.SkippedEmpty))
	return report, nil
}

// Preview parses without persisting, returning the resolved column mapping
// and a sample of the scored records.
func (s *ImportService) Preview(ctx context.Context, file io.Reader) (*ImportPreview, error) {
	parsed, err := s.parse(file)
	if err != nil {
		return nil, err
	}

	sample := parsed.students
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}
	return &ImportPreview{
		Columns:      parsed.columns,
		MappedFields: parsed.columns.MappedFields(),
		RowCount:     len(parsed.students),
		FailedRows:   len(parsed.errors),
		Errors:       s.capErrors(parsed.errors),
		Sample:       sample,
	}, nil
}

type parsedBatch struct {
	columns      importer.ColumnMap
	students     []models.Student
	errors       []RowError
	skippedEmpty int
}

func (s *ImportService) parse(file io.Reader) (*parsedBatch, error) {
	reader := importer.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrImportFailed, "file is empty or not a valid csv")
	}

	columns := importer.MapColumns(headers)
	if missing := columns.MissingRequired(); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrImportFailed,
			fmt.Sprintf("required columns not found: %s", strings.Join(missing, ", ")))
	}

	batch := &parsedBatch{columns: columns}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			batch.errors = append(batch.errors, RowError{Row: rowNum, Message: "malformed csv row"})
			continue
		}

		row := importer.NewRow(columns, record)
		if row.Empty() {
			batch.skippedEmpty++
			continue
		}

		student, err := s.buildFromRow(row)
		if err != nil {
			batch.errors = append(batch.errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		batch.students = append(batch.students, *student)
	}
	return batch, nil
}

// buildFromRow scores one CSV row. Unmapped and blank numeric cells default to
// zero; a non-numeric cell or a blank name/surname cell rejects the row.
func (s *ImportService) buildFromRow(row importer.Row) (*models.Student, error) {
	programID, err := row.Int(importer.FieldProgramID)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		ProgramID: programID,
		Name:      row.String(importer.FieldName),
		Surname:   row.String(importer.FieldSurname),
	}
	if student.Name == "" || student.Surname == "" {
		return nil, fmt.Errorf("blank name or surname cell")
	}

	english := scoring.EnglishComponents{}
	for field, target := range map[string]*float64{
		importer.FieldEngAssessment:    &english.Assessment,
		importer.FieldEngWriting:       &english.Writing,
		importer.FieldEngP1:            &english.Presentation1,
		importer.FieldEngP2:            &english.Presentation2,
		importer.FieldEngP3:            &english.Presentation3,
		importer.FieldEngParticipation: &english.Participation,
		importer.FieldEngMidterm:       &english.Midterm,
	} {
		if *target, err = row.Float(field); err != nil {
			return nil, err
		}
	}

	ict := scoring.ICTComponents{}
	for field, target := range map[string]*float64{
		importer.FieldICTQuiz:         &ict.Quiz,
		importer.FieldICTLab:          &ict.Lab,
		importer.FieldICTPresentation: &ict.Presentation,
		importer.FieldICTExam:         &ict.Exam,
	} {
		if *target, err = row.Float(field); err != nil {
			return nil, err
		}
	}

	student.EnglishPoint = scoring.EnglishPoint(english)
	student.IctPoint = scoring.ICTPoint(ict)

	program, known := s.catalog.Lookup(programID)
	if known {
		if program.Group.UsesADIAK() {
			adiak := scoring.ADIAKComponents{}
			for field, target := range map[string]*float64{
				importer.FieldADIAKPresentation:  &adiak.Presentation,
				importer.FieldADIAKParticipation: &adiak.Participation,
				importer.FieldADIAKMidterm:       &adiak.Midterm,
				importer.FieldADIAKFinal:         &adiak.Final,
			} {
				if *target, err = row.Float(field); err != nil {
					return nil, err
				}
			}
			student.AdiakPoint = scoring.ADIAKPoint(adiak)
		} else {
			history := scoring.HistoryComponents{}
			for field, target := range map[string]*float64{
				importer.FieldHistorySeminar:      &history.Seminar,
				importer.FieldHistoryInteractive:  &history.Interactive,
				importer.FieldHistoryPresentation: &history.Presentation,
				importer.FieldHistoryMidterm:      &history.Midterm,
				importer.FieldHistoryFinal:        &history.Final,
			} {
				if *target, err = row.Float(field); err != nil {
					return nil, err
				}
			}
			student.HistoryPoint = scoring.HistoryPoint(history)
		}
	}

	scoring.Derive(student, program, known)
	return student, nil
}

// capErrors limits error detail returned to clients; the full count is still
// reported via FailedRows.
func (s *ImportService) capErrors(errs []RowError) []RowError {
	limit := s.cfg.MaxErrorDetail
	if limit <= 0 || len(errs) <= limit {
		return errs
	}
	return errs[:limit]
}

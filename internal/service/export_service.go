package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/verba-edu/scholarship-api/internal/models"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
	"github.com/verba-edu/scholarship-api/pkg/export"
)

// Export formats supported by the results download endpoint.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type resultsProvider interface {
	Results(ctx context.Context, scholarsOnly bool) ([]models.ProgramResult, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders allocation results into downloadable files.
type ExportService struct {
	results resultsProvider
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(results resultsProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		results: results,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

var resultHeaders = []string{
	"Program", "Rank", "Surname", "Name",
	"English", "Third Subject", "ICT", "Average",
	"Grades", "Status", "Scholarship",
}

// Render produces the allocation results in the requested format.
func (s *ExportService) Render(ctx context.Context, format string, scholarsOnly bool) (*ExportFile, error) {
	results, err := s.results.Results(ctx, scholarsOnly)
	if err != nil {
		return nil, err
	}
	data := buildDataset(results)

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, ContentType: "text/csv; charset=utf-8", Filename: "scholarship-results.csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(data, "Scholarship Allocation Results")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: "scholarship-results.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildDataset(results []models.ProgramResult) export.Dataset {
	data := export.Dataset{Headers: resultHeaders}
	for _, result := range results {
		for _, student := range result.Students {
			row := map[string]string{
				"Program":       fmt.Sprintf("%d %s", result.Program.ID, result.Program.Name),
				"Surname":       student.Surname,
				"Name":          student.Name,
				"English":       formatScore(student.EnglishPoint),
				"Third Subject": formatScore(student.ThirdSubjectPoint(result.Program.Group)),
				"ICT":           formatScore(student.IctPoint),
				"Average":       formatScore(student.AverageScore),
				"Grades":        formatGrades(student.RelevantGrades(result.Program.Group)),
			}
			if student.Rank != nil {
				row["Rank"] = strconv.Itoa(*student.Rank)
			}
			if student.Cancelled {
				row["Status"] = "Cancelled"
			} else {
				row["Status"] = "Eligible"
			}
			if student.ScholarshipType != nil {
				row["Scholarship"] = student.ScholarshipType.DisplayName()
			}
			data.Rows = append(data.Rows, row)
		}
	}
	return data
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatGrades(grades []models.LetterGrade) string {
	out := ""
	for i, g := range grades {
		if i > 0 {
			out += "/"
		}
		out += string(g)
	}
	return out
}

package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/models"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
)

const allocationResultsKey = "allocation:results"

type allocationRepository interface {
	GetAll(ctx context.Context) ([]models.Student, error)
	SaveAllocation(ctx context.Context, students []models.Student) error
}

type resultsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type allocationMetrics interface {
	ObserveAllocation(ranked, scholars int)
}

// AllocationService ranks students inside their programs and assigns
// scholarship tiers against the free-seat quota. A pass is a pure function of
// the current student table, so rerunning it produces the same result.
type AllocationService struct {
	repo     allocationRepository
	catalog  *catalog.ProgramCatalog
	cache    resultsCache
	metrics  allocationMetrics
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAllocationService constructs the allocation service.
func NewAllocationService(repo allocationRepository, programs *catalog.ProgramCatalog, cache resultsCache, metrics allocationMetrics, cacheTTL time.Duration, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{repo: repo, catalog: programs, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

// Run executes one full allocation pass: group by program, rank by average,
// decide tiers, and persist everything in one transaction.
func (s *AllocationService) Run(ctx context.Context) (*models.AllocationSummary, error) {
	students, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	byProgram := make(map[int][]*models.Student)
	var programOrder []int
	for i := range students {
		// Previous pass results are void; every pass decides from scratch.
		students[i].Rank = nil
		students[i].ScholarshipType = nil

		id := students[i].ProgramID
		if _, seen := byProgram[id]; !seen {
			programOrder = append(programOrder, id)
		}
		byProgram[id] = append(byProgram[id], &students[i])
	}

	summary := &models.AllocationSummary{RunAt: time.Now().UTC()}
	for _, programID := range programOrder {
		program, known := s.catalog.Lookup(programID)
		if known {
			summary.Programs++
		}
		// Unknown programs carry the degraded zero-seat definition, so
		// their students are ranked but never clear the quota.
		ranked, scholars := s.allocateProgram(program, byProgram[programID])
		summary.StudentsRanked += ranked
		summary.ScholarsAssigned += scholars
	}

	if err := s.repo.SaveAllocation(ctx, students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist allocation")
	}
	s.Invalidate(ctx)
	if s.metrics != nil {
		s.metrics.ObserveAllocation(summary.StudentsRanked, summary.ScholarsAssigned)
	}

	s.logger.Info("allocation pass complete",
		zap.Int("programs", summary.Programs),
		zap.Int("students_ranked", summary.StudentsRanked),
		zap.Int("scholars_assigned", summary.ScholarsAssigned))
	return summary, nil
}

// allocateProgram ranks one program's cohort and decides tiers. Ranking is
// stable descending by average: every student gets a unique 1-based rank,
// equal averages resolved by insertion order.
func (s *AllocationService) allocateProgram(program models.ProgramDefinition, cohort []*models.Student) (ranked, scholars int) {
	sort.SliceStable(cohort, func(i, j int) bool {
		return cohort[i].AverageScore > cohort[j].AverageScore
	})

	for i, student := range cohort {
		rank := i + 1
		r := rank
		student.Rank = &r
		ranked++

		if tier, ok := decideTier(program, *student, rank); ok {
			t := tier
			student.ScholarshipType = &t
			scholars++
		}
	}
	return ranked, scholars
}

// decideTier applies the eligibility rules for one ranked student. Students
// outside the free-seat quota, cancelled students, and students with any
// failing relevant grade get no tier.
func decideTier(program models.ProgramDefinition, student models.Student, rank int) (models.ScholarshipType, bool) {
	if rank > program.FreeSeats {
		return "", false
	}
	if student.Cancelled {
		return "", false
	}

	grades := student.RelevantGrades(program.Group)
	if len(grades) != 3 {
		return "", false
	}

	countA := 0
	worstIsC := true
	for _, g := range grades {
		if g.Failing() {
			return "", false
		}
		if g == models.GradeA {
			countA++
		}
		if g != models.GradeA && g != models.GradeB && g != models.GradeC {
			worstIsC = false
		}
	}

	switch {
	case countA == 3:
		return models.ScholarshipTop, true
	case countA >= 1 && worstIsC:
		return models.ScholarshipHighAchiever, true
	case countA == 0 && worstIsC:
		return models.ScholarshipStandard, true
	default:
		return "", false
	}
}

// Results returns the allocation outcome grouped by program, ordered by rank
// within each program. The full result set is cached; the scholars-only view
// filters the cached set.
func (s *AllocationService) Results(ctx context.Context, scholarsOnly bool) ([]models.ProgramResult, error) {
	var results []models.ProgramResult
	if err := s.cache.Get(ctx, allocationResultsKey, &results); err == nil {
		return filterResults(results, scholarsOnly), nil
	}

	students, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	byProgram := make(map[int][]models.Student)
	for _, student := range students {
		byProgram[student.ProgramID] = append(byProgram[student.ProgramID], student)
	}

	results = make([]models.ProgramResult, 0, len(byProgram))
	for _, program := range s.catalog.List() {
		cohort, ok := byProgram[program.ID]
		if !ok {
			continue
		}
		sort.SliceStable(cohort, func(i, j int) bool {
			ri, rj := cohort[i].Rank, cohort[j].Rank
			switch {
			case ri == nil:
				return false
			case rj == nil:
				return true
			default:
				return *ri < *rj
			}
		})
		results = append(results, models.ProgramResult{Program: program, Students: cohort})
	}

	if err := s.cache.Set(ctx, allocationResultsKey, results, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache allocation results", zap.Error(err))
	}
	return filterResults(results, scholarsOnly), nil
}

// Invalidate drops the cached result set. Called after any student mutation.
func (s *AllocationService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, allocationResultsKey); err != nil {
		s.logger.Warn("failed to invalidate allocation cache", zap.Error(err))
	}
}

func filterResults(results []models.ProgramResult, scholarsOnly bool) []models.ProgramResult {
	if !scholarsOnly {
		return results
	}
	filtered := make([]models.ProgramResult, 0, len(results))
	for _, result := range results {
		scholars := make([]models.Student, 0, len(result.Students))
		for _, student := range result.Students {
			if student.ScholarshipType != nil {
				scholars = append(scholars, student)
			}
		}
		filtered = append(filtered, models.ProgramResult{Program: result.Program, Students: scholars})
	}
	return filtered
}

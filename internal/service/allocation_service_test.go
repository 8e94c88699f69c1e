package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/internal/models"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
)

type mockAllocationRepo struct {
	students  []models.Student
	getAllErr error
	saved     []models.Student
	saveErr   error
}

func (m *mockAllocationRepo) GetAll(ctx context.Context) ([]models.Student, error) {
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	out := make([]models.Student, len(m.students))
	copy(out, m.students)
	return out, nil
}

func (m *mockAllocationRepo) SaveAllocation(ctx context.Context, students []models.Student) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = make([]models.Student, len(students))
	copy(m.saved, students)
	return nil
}

type mockResultsCache struct {
	store   map[string][]byte
	deleted int
}

func newMockResultsCache() *mockResultsCache {
	return &mockResultsCache{store: make(map[string][]byte)}
}

func (m *mockResultsCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockResultsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockResultsCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	m.deleted++
	return nil
}

type mockAllocationMetrics struct {
	runs     int
	ranked   int
	scholars int
}

func (m *mockAllocationMetrics) ObserveAllocation(ranked, scholars int) {
	m.runs++
	m.ranked = ranked
	m.scholars = scholars
}

func gradePtr(g models.LetterGrade) *models.LetterGrade { return &g }

func adiakStudent(id string, avg float64, eng, adiak, ict models.LetterGrade) models.Student {
	cancelled := eng.Failing() || adiak.Failing() || ict.Failing()
	return models.Student{
		ID:           id,
		ProgramID:    250104,
		AverageScore: avg,
		Cancelled:    cancelled,
		EnglishGrade: gradePtr(eng),
		AdiakGrade:   gradePtr(adiak),
		IctGrade:     gradePtr(ict),
	}
}

func newAllocationService(repo *mockAllocationRepo, cache *mockResultsCache, metrics *mockAllocationMetrics, programs *catalog.ProgramCatalog) *AllocationService {
	if programs == nil {
		programs = catalog.Default()
	}
	var m allocationMetrics
	if metrics != nil {
		m = metrics
	}
	return NewAllocationService(repo, programs, cache, m, time.Minute, nil)
}

func savedByID(saved []models.Student) map[string]models.Student {
	out := make(map[string]models.Student, len(saved))
	for _, s := range saved {
		out[s.ID] = s
	}
	return out
}

func TestRunAssignsTiers(t *testing.T) {
	repo := &mockAllocationRepo{students: []models.Student{
		adiakStudent("top", 95, models.GradeA, models.GradeA, models.GradeA),
		adiakStudent("high", 88, models.GradeA, models.GradeB, models.GradeB),
		adiakStudent("standard", 80, models.GradeB, models.GradeC, models.GradeB),
	}}
	cache := newMockResultsCache()
	metrics := &mockAllocationMetrics{}
	svc := newAllocationService(repo, cache, metrics, nil)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Programs)
	assert.Equal(t, 3, summary.StudentsRanked)
	assert.Equal(t, 3, summary.ScholarsAssigned)

	byID := savedByID(repo.saved)
	require.NotNil(t, byID["top"].ScholarshipType)
	assert.Equal(t, models.ScholarshipTop, *byID["top"].ScholarshipType)
	require.NotNil(t, byID["high"].ScholarshipType)
	assert.Equal(t, models.ScholarshipHighAchiever, *byID["high"].ScholarshipType)
	require.NotNil(t, byID["standard"].ScholarshipType)
	assert.Equal(t, models.ScholarshipStandard, *byID["standard"].ScholarshipType)

	assert.Equal(t, 1, metrics.runs)
	assert.Equal(t, 3, metrics.ranked)
	assert.Equal(t, 3, metrics.scholars)
}

func TestRunQuotaCutsOffLowerRanks(t *testing.T) {
	// One free seat: only the best student can hold a scholarship, however
	// strong the runner-up is.
	programs := catalog.New([]models.ProgramDefinition{
		{ID: 250104, Name: "IT", FreeSeats: 1, PayableSeats: 1, Group: models.GroupRI},
	})
	repo := &mockAllocationRepo{students: []models.Student{
		adiakStudent("first", 96, models.GradeA, models.GradeA, models.GradeA),
		adiakStudent("second", 95, models.GradeA, models.GradeA, models.GradeA),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, programs)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.StudentsRanked)
	assert.Equal(t, 1, summary.ScholarsAssigned)

	byID := savedByID(repo.saved)
	require.NotNil(t, byID["first"].Rank)
	assert.Equal(t, 1, *byID["first"].Rank)
	require.NotNil(t, byID["first"].ScholarshipType)
	require.NotNil(t, byID["second"].Rank)
	assert.Equal(t, 2, *byID["second"].Rank)
	assert.Nil(t, byID["second"].ScholarshipType)
}

func TestRunCancelledStudentGetsNoTier(t *testing.T) {
	// A failing English grade cancels the student even at rank 1.
	repo := &mockAllocationRepo{students: []models.Student{
		adiakStudent("cancelled", 90, models.GradeD, models.GradeA, models.GradeA),
		adiakStudent("clean", 75, models.GradeB, models.GradeC, models.GradeB),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	byID := savedByID(repo.saved)
	require.NotNil(t, byID["cancelled"].Rank)
	assert.Equal(t, 1, *byID["cancelled"].Rank)
	assert.Nil(t, byID["cancelled"].ScholarshipType)
	require.NotNil(t, byID["clean"].ScholarshipType)
	assert.Equal(t, models.ScholarshipStandard, *byID["clean"].ScholarshipType)
}

func TestRunMixedGradesWithinQuotaGetNoTier(t *testing.T) {
	repo := &mockAllocationRepo{students: []models.Student{
		// D on ICT fails the re-check regardless of the two A grades.
		adiakStudent("failing", 85, models.GradeA, models.GradeA, models.GradeD),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.ScholarsAssigned)
	assert.Nil(t, savedByID(repo.saved)["failing"].ScholarshipType)
}

func TestRunEqualAveragesGetDistinctRanks(t *testing.T) {
	// Ties keep insertion order but never share a rank.
	repo := &mockAllocationRepo{students: []models.Student{
		adiakStudent("a", 90, models.GradeA, models.GradeB, models.GradeB),
		adiakStudent("b", 90, models.GradeA, models.GradeB, models.GradeB),
		adiakStudent("c", 85, models.GradeB, models.GradeB, models.GradeB),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	byID := savedByID(repo.saved)
	assert.Equal(t, 1, *byID["a"].Rank)
	assert.Equal(t, 2, *byID["b"].Rank)
	assert.Equal(t, 3, *byID["c"].Rank)
}

func TestRunTiedAveragesRespectQuota(t *testing.T) {
	// Two equally perfect students and one free seat: only the earlier
	// insertion gets the seat, the other falls outside the quota.
	programs := catalog.New([]models.ProgramDefinition{
		{ID: 250104, Name: "IT", FreeSeats: 1, PayableSeats: 1, Group: models.GroupRI},
	})
	repo := &mockAllocationRepo{students: []models.Student{
		adiakStudent("first", 95, models.GradeA, models.GradeA, models.GradeA),
		adiakStudent("second", 95, models.GradeA, models.GradeA, models.GradeA),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, programs)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ScholarsAssigned)

	byID := savedByID(repo.saved)
	require.NotNil(t, byID["first"].Rank)
	assert.Equal(t, 1, *byID["first"].Rank)
	require.NotNil(t, byID["first"].ScholarshipType)
	assert.Equal(t, models.ScholarshipTop, *byID["first"].ScholarshipType)
	require.NotNil(t, byID["second"].Rank)
	assert.Equal(t, 2, *byID["second"].Rank)
	assert.Nil(t, byID["second"].ScholarshipType)
}

func TestRunIsIdempotent(t *testing.T) {
	repo := &mockAllocationRepo{students: []models.Student{
		adiakStudent("one", 95, models.GradeA, models.GradeA, models.GradeA),
		adiakStudent("two", 80, models.GradeB, models.GradeC, models.GradeB),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	firstSaved := savedByID(repo.saved)

	// Feed the persisted outcome back in, as a rerun would see it.
	repo.students = repo.saved
	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	secondSaved := savedByID(repo.saved)

	assert.Equal(t, first.StudentsRanked, second.StudentsRanked)
	assert.Equal(t, first.ScholarsAssigned, second.ScholarsAssigned)
	for id, s := range firstSaved {
		assert.Equal(t, *s.Rank, *secondSaved[id].Rank, "rank of %s", id)
		if s.ScholarshipType == nil {
			assert.Nil(t, secondSaved[id].ScholarshipType)
		} else {
			assert.Equal(t, *s.ScholarshipType, *secondSaved[id].ScholarshipType)
		}
	}
}

func TestRunRanksUnknownProgramsWithoutTiers(t *testing.T) {
	// An unknown program has zero seats, so its students are ranked but
	// can never hold a scholarship. It is not counted as a program.
	repo := &mockAllocationRepo{students: []models.Student{
		{ID: "ghost", ProgramID: 999999},
		adiakStudent("real", 80, models.GradeB, models.GradeB, models.GradeB),
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Programs)
	assert.Equal(t, 2, summary.StudentsRanked)
	assert.Equal(t, 1, summary.ScholarsAssigned)

	byID := savedByID(repo.saved)
	require.NotNil(t, byID["ghost"].Rank)
	assert.Equal(t, 1, *byID["ghost"].Rank)
	assert.Nil(t, byID["ghost"].ScholarshipType)
	require.NotNil(t, byID["real"].Rank)
}

func TestRunPropagatesRepositoryErrors(t *testing.T) {
	repo := &mockAllocationRepo{getAllErr: errors.New("db down")}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}

func TestResultsGroupsAndCaches(t *testing.T) {
	rank1, rank2 := 1, 2
	top := models.ScholarshipTop
	repo := &mockAllocationRepo{students: []models.Student{
		{ID: "s2", ProgramID: 250104, AverageScore: 80, Rank: &rank2},
		{ID: "s1", ProgramID: 250104, AverageScore: 95, Rank: &rank1, ScholarshipType: &top},
		{ID: "h1", ProgramID: 250101, AverageScore: 70, Rank: &rank1},
	}}
	cache := newMockResultsCache()
	svc := newAllocationService(repo, cache, nil, nil)

	results, err := svc.Results(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Ordered by program ID, students by rank.
	assert.Equal(t, 250101, results[0].Program.ID)
	assert.Equal(t, 250104, results[1].Program.ID)
	require.Len(t, results[1].Students, 2)
	assert.Equal(t, "s1", results[1].Students[0].ID)
	assert.Equal(t, "s2", results[1].Students[1].ID)

	assert.Contains(t, cache.store, "allocation:results")

	// Second read is served from cache even if the table changes.
	repo.students = nil
	cached, err := svc.Results(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestResultsScholarsOnly(t *testing.T) {
	rank1, rank2 := 1, 2
	top := models.ScholarshipTop
	repo := &mockAllocationRepo{students: []models.Student{
		{ID: "s1", ProgramID: 250104, AverageScore: 95, Rank: &rank1, ScholarshipType: &top},
		{ID: "s2", ProgramID: 250104, AverageScore: 80, Rank: &rank2},
	}}
	svc := newAllocationService(repo, newMockResultsCache(), nil, nil)

	results, err := svc.Results(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Students, 1)
	assert.Equal(t, "s1", results[0].Students[0].ID)
}

func TestInvalidateDropsCache(t *testing.T) {
	cache := newMockResultsCache()
	cache.store[allocationResultsKey] = []byte("[]")
	svc := newAllocationService(&mockAllocationRepo{}, cache, nil, nil)

	svc.Invalidate(context.Background())
	assert.NotContains(t, cache.store, allocationResultsKey)
}

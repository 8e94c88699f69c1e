package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/verba-edu/scholarship-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, program_id, name, surname,
        english_point, adiak_point, history_point, ict_point,
        average_score, cancelled,
        english_grade, adiak_grade, history_grade, ict_grade,
        rank, scholarship_type, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ProgramID != 0 {
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(surname) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY created_at, id LIMIT %d OFFSET %d`,
		studentColumns, where, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// GetAll returns every student in insertion order. The allocator relies on
// this ordering: it is the tie-break for equal averages.
func (r *StudentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY created_at, id", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("get all students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, program_id, name, surname,
        english_point, adiak_point, history_point, ict_point,
        average_score, cancelled,
        english_grade, adiak_grade, history_grade, ict_grade,
        rank, scholarship_type, created_at, updated_at)
        VALUES (:id, :program_id, :name, :surname,
        :english_point, :adiak_point, :history_point, :ict_point,
        :average_score, :cancelled,
        :english_grade, :adiak_grade, :history_grade, :ict_grade,
        :rank, :scholarship_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CreateBatch inserts parsed import rows inside one transaction so a batch
// either commits all successfully parsed rows or none.
func (r *StudentRepository) CreateBatch(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const query = `INSERT INTO students (id, program_id, name, surname,
        english_point, adiak_point, history_point, ict_point,
        average_score, cancelled,
        english_grade, adiak_grade, history_grade, ict_grade,
        rank, scholarship_type, created_at, updated_at)
        VALUES (:id, :program_id, :name, :surname,
        :english_point, :adiak_point, :history_point, :ict_point,
        :average_score, :cancelled,
        :english_grade, :adiak_grade, :history_grade, :ict_grade,
        :rank, :scholarship_type, :created_at, :updated_at)`
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
		if students[i].CreatedAt.IsZero() {
			students[i].CreatedAt = now
		}
		students[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, students[i]); err != nil {
			return fmt.Errorf("insert imported student: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

// Update replaces an existing student row.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET program_id = :program_id, name = :name, surname = :surname,
        english_point = :english_point, adiak_point = :adiak_point,
        history_point = :history_point, ict_point = :ict_point,
        average_score = :average_score, cancelled = :cancelled,
        english_grade = :english_grade, adiak_grade = :adiak_grade,
        history_grade = :history_grade, ict_grade = :ict_grade,
        rank = :rank, scholarship_type = :scholarship_type, updated_at = :updated_at
        WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SaveAllocation persists rank and scholarship tier for every record of one
// allocation pass in a single transaction, so readers never observe a
// half-applied ranking.
func (r *StudentRepository) SaveAllocation(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE students SET rank = :rank, scholarship_type = :scholarship_type, updated_at = :updated_at WHERE id = :id`
	now := time.Now().UTC()
	for i := range students {
		students[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, students[i]); err != nil {
			return fmt.Errorf("persist allocation for %s: %w", students[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation tx: %w", err)
	}
	return nil
}

// Delete removes one student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll clears the whole student table.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("delete all students: %w", err)
	}
	return nil
}

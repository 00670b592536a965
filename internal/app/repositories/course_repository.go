package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db DBTX
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *CourseRepository) WithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

// Create inserts a new course and sets its generated id
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO courses (name, professor_id)
		VALUES ($1, $2)
		RETURNING id`,
		course.Name, course.ProfessorID).Scan(&course.ID)

	if err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// Exists checks if a course with the id exists
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`,
		id).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking course: %w", err)
	}

	return exists, nil
}

// GetByID retrieves a course with its professor and all seats, seat students
// included. Seats are ordered by id so the free-seat choice is deterministic.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	course := &models.Course{}
	professor := &models.Professor{}
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.name, c.professor_id, p.kind, p.name, p.phone, p.email, pr.salary
		FROM courses c
		JOIN persons p ON p.id = c.professor_id
		JOIN professors pr ON pr.person_id = c.professor_id
		WHERE c.id = $1`,
		id).Scan(
		&course.ID, &course.Name, &course.ProfessorID,
		&professor.Kind, &professor.Name, &professor.Phone,
		&professor.Email, &professor.Salary)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	professor.ID = course.ProfessorID
	course.Professor = professor

	seats, err := r.getSeatsWithStudents(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Seats = seats

	return course, nil
}

// getSeatsWithStudents loads the seats of a course joined with their students
func (r *CourseRepository) getSeatsWithStudents(ctx context.Context, courseID int64) ([]*models.Seat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.course_id, s.student_id, s.year, s.mark,
		       p.name, st.student_number, st.avg_mark
		FROM seats s
		LEFT JOIN persons p ON p.id = s.student_id
		LEFT JOIN students st ON st.person_id = s.student_id
		WHERE s.course_id = $1
		ORDER BY s.id ASC`,
		courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course seats: %w", err)
	}
	defer rows.Close()

	var seats []*models.Seat
	for rows.Next() {
		seat := &models.Seat{}
		var name *string
		var studentNumber *uuid.UUID
		var avgMark *float64
		if err := rows.Scan(
			&seat.ID, &seat.CourseID, &seat.StudentID, &seat.Year, &seat.Mark,
			&name, &studentNumber, &avgMark); err != nil {
			return nil, err
		}
		if seat.StudentID != nil {
			student := &models.Student{}
			student.ID = *seat.StudentID
			student.Kind = models.KindStudent
			if name != nil {
				student.Name = *name
			}
			if studentNumber != nil {
				student.StudentNumber = *studentNumber
			}
			if avgMark != nil {
				student.AvgMark = *avgMark
			}
			seat.Student = student
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

// GetPage retrieves one page of fully loaded courses ordered by id ascending
func (r *CourseRepository) GetPage(ctx context.Context, offset uint64, limit int) ([]*models.Course, error) {
	ids, err := r.courseIDs(ctx, `
		SELECT id FROM courses ORDER BY id ASC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	return r.loadCourses(ctx, ids)
}

// GetAll retrieves every course fully loaded, ordered by id ascending
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.Course, error) {
	ids, err := r.courseIDs(ctx, `SELECT id FROM courses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return r.loadCourses(ctx, ids)
}

// GetByProfessorID retrieves the courses taught by a professor
func (r *CourseRepository) GetByProfessorID(ctx context.Context, professorID int64) ([]*models.Course, error) {
	ids, err := r.courseIDs(ctx, `
		SELECT id FROM courses WHERE professor_id = $1 ORDER BY id ASC`, professorID)
	if err != nil {
		return nil, err
	}
	return r.loadCourses(ctx, ids)
}

func (r *CourseRepository) courseIDs(ctx context.Context, sql string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *CourseRepository) loadCourses(ctx context.Context, ids []int64) ([]*models.Course, error) {
	courses := make([]*models.Course, 0, len(ids))
	for _, id := range ids {
		course, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// Count counts all courses
func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting courses: %w", err)
	}
	return count, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
	"github.com/acadsys/aulario/internal/pkg/dberrors"
)

// SeatRepository handles database operations for seats
type SeatRepository struct {
	db DBTX
}

// NewSeatRepository creates a new seat repository
func NewSeatRepository(db DBTX) *SeatRepository {
	return &SeatRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *SeatRepository) WithTx(tx pgx.Tx) *SeatRepository {
	return &SeatRepository{db: tx}
}

// Insert creates a seat and sets its generated id
func (r *SeatRepository) Insert(ctx context.Context, seat *models.Seat) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO seats (course_id, student_id, year, mark)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		seat.CourseID, seat.StudentID, seat.Year, seat.Mark).Scan(&seat.ID)

	if err != nil {
		if dberrors.IsUniqueViolation(err, "seats_course_student_key") {
			return apperrors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("error creating seat: %w", err)
	}

	return nil
}

// InsertEmpty creates count empty seats for a course dated now
func (r *SeatRepository) InsertEmpty(ctx context.Context, courseID int64, count int, year time.Time) error {
	for i := 0; i < count; i++ {
		seat := &models.Seat{CourseID: courseID, Year: year}
		if err := r.Insert(ctx, seat); err != nil {
			return err
		}
	}
	return nil
}

// LockFreeSeat selects the lowest-id free seat of a course and locks the row
// until the surrounding transaction ends. Returns ErrCourseFull when no seat
// is free.
func (r *SeatRepository) LockFreeSeat(ctx context.Context, courseID int64) (*models.Seat, error) {
	seat := &models.Seat{}
	err := r.db.QueryRow(ctx, `
		SELECT id, course_id, student_id, year, mark
		FROM seats
		WHERE course_id = $1 AND student_id IS NULL
		ORDER BY id ASC
		LIMIT 1
		FOR UPDATE`,
		courseID).Scan(&seat.ID, &seat.CourseID, &seat.StudentID, &seat.Year, &seat.Mark)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseFull
		}
		return nil, fmt.Errorf("error locking free seat: %w", err)
	}

	return seat, nil
}

// AssignSeat puts a student on a seat. The guard keeps the write from landing
// on a seat that was taken between the lookup and the update, and the partial
// unique index on (course_id, student_id) rejects a second seat for the same
// student in the same course.
func (r *SeatRepository) AssignSeat(ctx context.Context, seatID, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE seats
		SET student_id = $1
		WHERE id = $2 AND student_id IS NULL`,
		studentID, seatID)

	if err != nil {
		if dberrors.IsUniqueViolation(err, "seats_course_student_key") {
			return apperrors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("error assigning seat: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseFull
	}

	return nil
}

// GetSeatForStudentInCourse retrieves the seat a student holds in a course
func (r *SeatRepository) GetSeatForStudentInCourse(ctx context.Context, courseID, studentID int64) (*models.Seat, error) {
	seat := &models.Seat{}
	err := r.db.QueryRow(ctx, `
		SELECT id, course_id, student_id, year, mark
		FROM seats
		WHERE course_id = $1 AND student_id = $2`,
		courseID, studentID).Scan(&seat.ID, &seat.CourseID, &seat.StudentID, &seat.Year, &seat.Mark)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotEnrolled
		}
		return nil, fmt.Errorf("error retrieving seat: %w", err)
	}

	return seat, nil
}

// ClearSeat frees a seat, dropping its student and mark
func (r *SeatRepository) ClearSeat(ctx context.Context, seatID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE seats
		SET student_id = NULL, mark = NULL
		WHERE id = $1`,
		seatID)

	if err != nil {
		return fmt.Errorf("error clearing seat: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// SetMark records a mark on a seat
func (r *SeatRepository) SetMark(ctx context.Context, seatID int64, mark float64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE seats
		SET mark = $1
		WHERE id = $2`,
		mark, seatID)

	if err != nil {
		return fmt.Errorf("error setting mark: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// GetEnrollmentsForStudent retrieves the student's seats joined with their
// courses, ordered by course id
func (r *SeatRepository) GetEnrollmentsForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, s.year, s.mark
		FROM seats s
		JOIN courses c ON c.id = s.course_id
		WHERE s.student_id = $1
		ORDER BY c.id ASC`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.CourseID, &e.CourseName, &e.Year, &e.Mark); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

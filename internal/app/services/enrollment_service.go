package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/db"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
	"github.com/acadsys/aulario/internal/pkg/helpers"
)

// EnrollmentService handles courses, seats, assignments and marks
type EnrollmentService struct {
	database   *db.PostgresDB
	courseRepo CourseStore
	seatRepo   SeatStore
	personRepo PersonStore
	logger     zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	database *db.PostgresDB,
	courseRepo CourseStore,
	seatRepo SeatStore,
	personRepo PersonStore,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		database:   database,
		courseRepo: courseRepo,
		seatRepo:   seatRepo,
		personRepo: personRepo,
		logger:     logger,
	}
}

// CreateCourse creates a course with its seats in one transaction. Either
// SeatsAmount produces that many empty seats dated now, or the explicit seat
// list is inserted as given. Students placed on created seats get their
// average recomputed when the seat carries a mark.
func (s *EnrollmentService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	if req.SeatsAmount != nil && len(req.Seats) > 0 {
		return nil, apperrors.NewValidationError("seatsAmount and seats are mutually exclusive")
	}
	if req.SeatsAmount != nil && *req.SeatsAmount < 1 {
		return nil, apperrors.NewValidationError("seatsAmount must be positive")
	}
	for _, payload := range req.Seats {
		if payload.Mark != nil && payload.StudentID == nil {
			return nil, apperrors.NewValidationError("a seat mark requires a student")
		}
		if payload.Mark != nil && (*payload.Mark < 0 || *payload.Mark > 10) {
			return nil, apperrors.NewValidationError("mark must be between 0 and 10")
		}
	}

	course := &models.Course{Name: req.Name, ProfessorID: req.ProfessorID}

	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		courseRepo := s.courseRepo.WithTx(tx)
		seatRepo := s.seatRepo.WithTx(tx)
		personRepo := s.personRepo.WithTx(tx)

		ok, err := personRepo.ProfessorExists(ctx, req.ProfessorID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrProfessorNotFound
		}

		if err := courseRepo.Create(ctx, course); err != nil {
			return err
		}

		now := time.Now()
		if req.SeatsAmount != nil {
			return seatRepo.InsertEmpty(ctx, course.ID, *req.SeatsAmount, now)
		}

		marked := make(map[int64]struct{})
		for _, payload := range req.Seats {
			seat := &models.Seat{
				CourseID:  course.ID,
				StudentID: payload.StudentID,
				Mark:      payload.Mark,
				Year:      now,
			}
			if payload.Year != nil {
				seat.Year = *payload.Year
			}

			if payload.StudentID != nil {
				ok, err := personRepo.StudentExists(ctx, *payload.StudentID)
				if err != nil {
					return err
				}
				if !ok {
					return apperrors.ErrStudentNotFound
				}
			}

			if err := seatRepo.Insert(ctx, seat); err != nil {
				return err
			}

			if payload.Mark != nil {
				marked[*payload.StudentID] = struct{}{}
			}
		}

		for studentID := range marked {
			if err := personRepo.RecomputeStudentAverage(ctx, studentID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", course.ID).Str("name", course.Name).Msg("Course created")

	return s.courseRepo.GetByID(ctx, course.ID)
}

// AssignStudentToCourse puts a student on the lowest-id free seat of the
// course and returns the course reloaded after the assignment. The free seat
// is row-locked inside the transaction, so two concurrent assignments cannot
// land on the same seat, and the unique index on (course_id, student_id)
// keeps one student from holding two seats.
func (s *EnrollmentService) AssignStudentToCourse(ctx context.Context, courseID, studentID int64) (*models.Course, error) {
	var seatID int64

	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		courseRepo := s.courseRepo.WithTx(tx)
		seatRepo := s.seatRepo.WithTx(tx)
		personRepo := s.personRepo.WithTx(tx)

		ok, err := courseRepo.Exists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrCourseNotFound
		}

		ok, err = personRepo.StudentExists(ctx, studentID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrStudentNotFound
		}

		if _, err := seatRepo.GetSeatForStudentInCourse(ctx, courseID, studentID); err == nil {
			return apperrors.ErrAlreadyEnrolled
		} else if !errors.Is(err, apperrors.ErrNotEnrolled) {
			return err
		}

		free, err := seatRepo.LockFreeSeat(ctx, courseID)
		if err != nil {
			return err
		}

		if err := seatRepo.AssignSeat(ctx, free.ID, studentID); err != nil {
			return err
		}

		seatID = free.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("studentID", studentID).
		Int64("seatID", seatID).
		Msg("Student assigned to course")

	return s.courseRepo.GetByID(ctx, courseID)
}

// AssignStudentsToCourse merges occupied seats into the course's seat set
// and returns the course reloaded after the merge. Every entry names a
// student; seats are inserted, not matched against existing free ones, and
// averages of marked students are recomputed. All inserts commit together.
func (s *EnrollmentService) AssignStudentsToCourse(ctx context.Context, courseID int64, req *dto.BulkAssignRequest) (*models.Course, error) {
	for _, entry := range req.Seats {
		if entry.Mark != nil && (*entry.Mark < 0 || *entry.Mark > 10) {
			return nil, apperrors.NewValidationError("mark must be between 0 and 10")
		}
	}

	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		courseRepo := s.courseRepo.WithTx(tx)
		seatRepo := s.seatRepo.WithTx(tx)
		personRepo := s.personRepo.WithTx(tx)

		ok, err := courseRepo.Exists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrCourseNotFound
		}

		now := time.Now()
		marked := make(map[int64]struct{})
		for _, entry := range req.Seats {
			ok, err := personRepo.StudentExists(ctx, entry.StudentID)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrStudentNotFound
			}

			studentID := entry.StudentID
			seat := &models.Seat{
				CourseID:  courseID,
				StudentID: &studentID,
				Mark:      entry.Mark,
				Year:      now,
			}
			if entry.Year != nil {
				seat.Year = *entry.Year
			}

			if err := seatRepo.Insert(ctx, seat); err != nil {
				return err
			}

			if entry.Mark != nil {
				marked[studentID] = struct{}{}
			}
		}

		for studentID := range marked {
			if err := personRepo.RecomputeStudentAverage(ctx, studentID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int("seats", len(req.Seats)).
		Msg("Students assigned to course")

	return s.courseRepo.GetByID(ctx, courseID)
}

// UnassignStudentFromCourse frees the student's seat and drops its mark,
// then recomputes the student's average within the same transaction.
func (s *EnrollmentService) UnassignStudentFromCourse(ctx context.Context, courseID, studentID int64) error {
	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		courseRepo := s.courseRepo.WithTx(tx)
		seatRepo := s.seatRepo.WithTx(tx)
		personRepo := s.personRepo.WithTx(tx)

		ok, err := courseRepo.Exists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrCourseNotFound
		}

		seat, err := seatRepo.GetSeatForStudentInCourse(ctx, courseID, studentID)
		if err != nil {
			return err
		}

		if err := seatRepo.ClearSeat(ctx, seat.ID); err != nil {
			return err
		}

		return personRepo.RecomputeStudentAverage(ctx, studentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("studentID", studentID).
		Msg("Student unassigned from course")

	return nil
}

// SetMarkToStudentInCourse records the mark on the student's seat and
// recomputes the average within the same transaction. Re-marking overwrites
// the previous mark.
func (s *EnrollmentService) SetMarkToStudentInCourse(ctx context.Context, courseID, studentID int64, mark float64) (*dto.MarkResponse, error) {
	if mark < 0 || mark > 10 {
		return nil, apperrors.NewValidationError("mark must be between 0 and 10")
	}

	var seatYear time.Time

	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		courseRepo := s.courseRepo.WithTx(tx)
		seatRepo := s.seatRepo.WithTx(tx)
		personRepo := s.personRepo.WithTx(tx)

		ok, err := courseRepo.Exists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrCourseNotFound
		}

		seat, err := seatRepo.GetSeatForStudentInCourse(ctx, courseID, studentID)
		if err != nil {
			return err
		}
		seatYear = seat.Year

		if err := seatRepo.SetMark(ctx, seat.ID, mark); err != nil {
			return err
		}

		return personRepo.RecomputeStudentAverage(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}

	student, err := s.personRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("studentID", studentID).
		Float64("mark", mark).
		Msg("Mark recorded")

	return &dto.MarkResponse{
		Year:    seatYear,
		Student: *dto.FromStudentSummary(student),
		Mark:    &mark,
	}, nil
}

// GetCoursesPage returns one page of fully loaded courses
func (s *EnrollmentService) GetCoursesPage(ctx context.Context, page, size int) ([]*models.Course, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	courses, err := s.courseRepo.GetPage(ctx, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	total, err := s.courseRepo.Count(ctx)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return courses, helpers.NewPaginationInfo(total, page, size), nil
}

// GetAllCourses returns every course fully loaded
func (s *EnrollmentService) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.GetAll(ctx)
}

// GetCourseByID returns one course with professor and seats
func (s *EnrollmentService) GetCourseByID(ctx context.Context, courseID int64) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, courseID)
}

// GetStudentsInCourse returns the students holding seats in a course. Each
// occupied seat is resolved to the fully loaded student, with address and
// seat set, not the partial projection embedded in the course.
func (s *EnrollmentService) GetStudentsInCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	occupied := course.OccupiedSeats()
	students := make([]*models.Student, 0, len(occupied))
	for _, seat := range occupied {
		student, err := s.personRepo.GetStudentByID(ctx, *seat.StudentID)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

// GetEnrollmentsForStudent returns the student's own seats with their courses
func (s *EnrollmentService) GetEnrollmentsForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return s.seatRepo.GetEnrollmentsForStudent(ctx, studentID)
}

// GetCoursesByProfessor returns the courses taught by a professor
func (s *EnrollmentService) GetCoursesByProfessor(ctx context.Context, professorID int64) ([]*models.Course, error) {
	return s.courseRepo.GetByProfessorID(ctx, professorID)
}

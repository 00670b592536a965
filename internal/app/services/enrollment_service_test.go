package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
)

func newEnrollmentFixture() (*EnrollmentService, *fakeCourseStore, *fakeSeatStore, *fakePersonStore) {
	courses := newFakeCourseStore()
	seats := newFakeSeatStore()
	persons := newFakePersonStore()
	svc := NewEnrollmentService(nil, courses, seats, persons, zerolog.Nop())
	return svc, courses, seats, persons
}

func TestCreateCourseValidation(t *testing.T) {
	svc, _, _, _ := newEnrollmentFixture()
	ctx := context.Background()

	seatsAmount := func(n int) *int { return &n }

	tests := []struct {
		name string
		req  dto.CreateCourseRequest
	}{
		{
			name: "seatsAmount and seats together",
			req: dto.CreateCourseRequest{
				Name: "Algorithms", ProfessorID: 10,
				SeatsAmount: seatsAmount(3),
				Seats:       []dto.SeatPayload{{StudentID: iptr(20)}},
			},
		},
		{
			name: "zero seatsAmount",
			req:  dto.CreateCourseRequest{Name: "Algorithms", ProfessorID: 10, SeatsAmount: seatsAmount(0)},
		},
		{
			name: "mark without student",
			req: dto.CreateCourseRequest{
				Name: "Algorithms", ProfessorID: 10,
				Seats: []dto.SeatPayload{{Mark: fptr(7)}},
			},
		},
		{
			name: "mark above range",
			req: dto.CreateCourseRequest{
				Name: "Algorithms", ProfessorID: 10,
				Seats: []dto.SeatPayload{{StudentID: iptr(20), Mark: fptr(10.5)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateCourse(ctx, &tt.req); !errors.Is(err, apperrors.ErrValidationFailed) {
				t.Fatalf("CreateCourse() error = %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestAssignStudentsToCourseMarkValidation(t *testing.T) {
	svc, _, _, _ := newEnrollmentFixture()

	req := &dto.BulkAssignRequest{Seats: []dto.BulkSeat{{StudentID: 20, Mark: fptr(-0.5)}}}

	if _, err := svc.AssignStudentsToCourse(context.Background(), 1, req); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("AssignStudentsToCourse() error = %v, want ErrValidationFailed", err)
	}
}

func TestSetMarkRejectsOutOfRange(t *testing.T) {
	svc, _, _, _ := newEnrollmentFixture()
	ctx := context.Background()

	for _, mark := range []float64{-1, 10.5} {
		if _, err := svc.SetMarkToStudentInCourse(ctx, 1, 20, mark); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("SetMarkToStudentInCourse(%v) error = %v, want ErrValidationFailed", mark, err)
		}
	}
}

// TestGetStudentsInCourse checks that each occupied seat is resolved to the
// fully loaded student record, not to the partial projection the course
// query embeds in its seats.
func TestGetStudentsInCourse(t *testing.T) {
	svc, courses, _, persons := newEnrollmentFixture()
	ctx := context.Background()

	year := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	partial := &models.Student{Person: models.Person{ID: 20, Kind: models.KindStudent, Name: "Ada"}}
	courses.courses[1] = &models.Course{
		ID: 1, Name: "Algorithms", ProfessorID: 10,
		Seats: []*models.Seat{
			{ID: 1, CourseID: 1, Year: year, StudentID: iptr(20), Student: partial},
			{ID: 2, CourseID: 1, Year: year},
		},
	}

	full := &models.Student{
		Person: models.Person{
			ID:      20,
			Kind:    models.KindStudent,
			Name:    "Ada",
			Phone:   "+54 11 5555 0100",
			Email:   "ada@example.edu",
			Address: &models.Address{PersonID: 20, City: "Buenos Aires", Country: "Argentina"},
		},
		StudentNumber: uuid.New(),
		AvgMark:       8.5,
		Seats:         []*models.Seat{{ID: 1, CourseID: 1, Year: year, StudentID: iptr(20)}},
	}
	persons.students[20] = full

	students, err := svc.GetStudentsInCourse(ctx, 1)
	if err != nil {
		t.Fatalf("GetStudentsInCourse() error = %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("got %d students, want 1", len(students))
	}

	got := students[0]
	if got.Email == "" || got.Address == nil || len(got.Seats) == 0 {
		t.Fatalf("student %d not fully loaded: %+v", got.ID, got)
	}
	if got.Email != "ada@example.edu" || got.AvgMark != 8.5 {
		t.Fatalf("unexpected student: %+v", got)
	}

	if _, err := svc.GetStudentsInCourse(ctx, 99); !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Fatalf("GetStudentsInCourse(unknown) error = %v, want ErrCourseNotFound", err)
	}
}

func TestGetCoursesPage(t *testing.T) {
	svc, courses, _, _ := newEnrollmentFixture()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		courses.courses[i] = &models.Course{ID: i, Name: "Course", ProfessorID: 10}
	}

	page, pagination, err := svc.GetCoursesPage(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetCoursesPage() error = %v", err)
	}
	if len(page) != 2 || page[0].ID != 1 || page[1].ID != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if pagination.TotalItems != 3 || pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
}

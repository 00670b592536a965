package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
)

func newIdentityFixture() (*IdentityService, *fakeUserStore, *fakePersonStore, *fakeSeatStore) {
	users := newFakeUserStore()
	persons := newFakePersonStore()
	seats := newFakeSeatStore()
	svc := NewIdentityService(nil, users, persons, seats, zerolog.Nop())
	return svc, users, persons, seats
}

func fptr(f float64) *float64 { return &f }

func iptr(i int64) *int64 { return &i }

func TestCreateUserValidation(t *testing.T) {
	svc, _, _, _ := newIdentityFixture()
	ctx := context.Background()

	studentPerson := func() *dto.PersonPayload {
		return &dto.PersonPayload{Type: models.KindStudent, Name: "Ada", Email: "ada@example.edu"}
	}

	tests := []struct {
		name string
		req  dto.CreateUserRequest
	}{
		{
			name: "unknown role",
			req:  dto.CreateUserRequest{Username: "ada", Password: "secret123", Role: "TEACHER", Person: studentPerson()},
		},
		{
			name: "short password",
			req:  dto.CreateUserRequest{Username: "ada", Password: "short", Role: models.RoleStudent, Person: studentPerson()},
		},
		{
			name: "blank username",
			req:  dto.CreateUserRequest{Username: "   ", Password: "secret123", Role: models.RoleStudent, Person: studentPerson()},
		},
		{
			name: "admin with person",
			req:  dto.CreateUserRequest{Username: "root", Password: "secret123", Role: models.RoleAdmin, Person: studentPerson()},
		},
		{
			name: "student without person",
			req:  dto.CreateUserRequest{Username: "ada", Password: "secret123", Role: models.RoleStudent},
		},
		{
			name: "student with professor person",
			req: dto.CreateUserRequest{
				Username: "ada", Password: "secret123", Role: models.RoleStudent,
				Person: &dto.PersonPayload{Type: models.KindProfessor, Name: "Ada", Email: "ada@example.edu", Salary: fptr(1000)},
			},
		},
		{
			name: "professor without salary",
			req: dto.CreateUserRequest{
				Username: "turing", Password: "secret123", Role: models.RoleProfessor,
				Person: &dto.PersonPayload{Type: models.KindProfessor, Name: "Alan", Email: "alan@example.edu"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(ctx, &tt.req); !errors.Is(err, apperrors.ErrValidationFailed) {
				t.Fatalf("CreateUser() error = %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _, persons, _ := newIdentityFixture()
	persons.emails["ada@example.edu"] = 7

	req := &dto.CreateUserRequest{
		Username: "ada",
		Password: "secret123",
		Role:     models.RoleStudent,
		Person:   &dto.PersonPayload{Type: models.KindStudent, Name: "Ada", Email: "Ada@Example.edu"},
	}

	if _, err := svc.CreateUser(context.Background(), req); !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("CreateUser() error = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestUpdatePersonUnknownPersonBeatsEmailConflict(t *testing.T) {
	svc, _, persons, _ := newIdentityFixture()
	// The requested email belongs to someone else, but the person being
	// updated does not exist: that must surface as not-found, not conflict.
	persons.emails["taken@example.edu"] = 9

	req := &dto.UpdatePersonRequest{Name: "Ada", Email: "taken@example.edu"}

	if _, err := svc.UpdatePerson(context.Background(), 4, req); !errors.Is(err, apperrors.ErrPersonNotFound) {
		t.Fatalf("UpdatePerson() error = %v, want ErrPersonNotFound", err)
	}
}

func TestUpdatePersonEmailConflict(t *testing.T) {
	svc, _, persons, _ := newIdentityFixture()
	persons.persons[4] = &models.Person{ID: 4, Kind: models.KindStudent, Name: "Ada", Email: "ada@example.edu"}
	persons.emails["ada@example.edu"] = 4
	persons.emails["taken@example.edu"] = 9

	req := &dto.UpdatePersonRequest{Name: "Ada", Email: "taken@example.edu"}

	if _, err := svc.UpdatePerson(context.Background(), 4, req); !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("UpdatePerson() error = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestGetStudentByUserID(t *testing.T) {
	svc, users, persons, _ := newIdentityFixture()

	users.users[1] = &models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	users.users[2] = &models.User{ID: 2, Username: "ada", Role: models.RoleStudent, PersonID: iptr(5)}
	student := &models.Student{Person: models.Person{ID: 5, Kind: models.KindStudent, Name: "Ada"}}
	persons.students[5] = student

	if _, err := svc.GetStudentByUserID(context.Background(), 1); !errors.Is(err, apperrors.ErrNotAStudent) {
		t.Fatalf("GetStudentByUserID(admin) error = %v, want ErrNotAStudent", err)
	}

	got, err := svc.GetStudentByUserID(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetStudentByUserID() error = %v", err)
	}
	if got.ID != 5 {
		t.Fatalf("GetStudentByUserID() = %+v, want student 5", got)
	}
}

func TestCanAssignStudentToCourse(t *testing.T) {
	svc, _, _, seats := newIdentityFixture()
	ctx := context.Background()

	ok, err := svc.CanAssignStudentToCourse(ctx, 20, 1)
	if err != nil || !ok {
		t.Fatalf("CanAssignStudentToCourse() = %v, %v, want true for unenrolled student", ok, err)
	}

	seats.seats[1] = &models.Seat{ID: 1, CourseID: 1, StudentID: iptr(20)}

	ok, err = svc.CanAssignStudentToCourse(ctx, 20, 1)
	if err != nil || ok {
		t.Fatalf("CanAssignStudentToCourse() = %v, %v, want false for enrolled student", ok, err)
	}
}

package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/app/repositories"
)

// Services defined in this package:
// - AuthService: login, token refresh and logout against the users table
// - IdentityService: admin user creation and person management
// - EnrollmentService: courses, seats, assignments and marks
//
// Each service consumes its storage through the store interfaces below.
// The repositories package provides the pgx implementations; tests
// substitute in-memory fakes. WithTx hands back the concrete repository
// bound to the transaction, so everything inside a transaction runs on
// the real store.

// UserStore is the user account storage consumed by the services
type UserStore interface {
	WithTx(tx pgx.Tx) *repositories.UserRepository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// PersonStore is the person, student and professor storage
type PersonStore interface {
	WithTx(tx pgx.Tx) *repositories.PersonRepository
	CreatePerson(ctx context.Context, person *models.Person) error
	CreateAddress(ctx context.Context, address *models.Address) error
	CreateStudent(ctx context.Context, student *models.Student) error
	CreateProfessor(ctx context.Context, professor *models.Professor) error
	GetPersonByID(ctx context.Context, id int64) (*models.Person, error)
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	GetProfessorByID(ctx context.Context, id int64) (*models.Professor, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	EmailExistsExcept(ctx context.Context, email string, personID int64) (bool, error)
	UpdatePerson(ctx context.Context, person *models.Person) error
	UpsertAddress(ctx context.Context, address *models.Address) error
	RecomputeStudentAverage(ctx context.Context, studentID int64) error
	GetPersonsPage(ctx context.Context, offset uint64, limit int) ([]*models.Person, error)
	CountPersons(ctx context.Context) (int64, error)
	SearchStudents(ctx context.Context) ([]dto.StudentSearchResult, error)
	GetAllProfessors(ctx context.Context) ([]*models.Professor, error)
	StudentExists(ctx context.Context, id int64) (bool, error)
	ProfessorExists(ctx context.Context, id int64) (bool, error)
}

// CourseStore is the course storage
type CourseStore interface {
	WithTx(tx pgx.Tx) *repositories.CourseRepository
	Create(ctx context.Context, course *models.Course) error
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetPage(ctx context.Context, offset uint64, limit int) ([]*models.Course, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	GetByProfessorID(ctx context.Context, professorID int64) ([]*models.Course, error)
	Count(ctx context.Context) (int64, error)
}

// SeatStore is the seat storage
type SeatStore interface {
	WithTx(tx pgx.Tx) *repositories.SeatRepository
	Insert(ctx context.Context, seat *models.Seat) error
	InsertEmpty(ctx context.Context, courseID int64, count int, year time.Time) error
	LockFreeSeat(ctx context.Context, courseID int64) (*models.Seat, error)
	AssignSeat(ctx context.Context, seatID, studentID int64) error
	GetSeatForStudentInCourse(ctx context.Context, courseID, studentID int64) (*models.Seat, error)
	ClearSeat(ctx context.Context, seatID int64) error
	SetMark(ctx context.Context, seatID int64, mark float64) error
	GetEnrollmentsForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
}

// TokenStore is the refresh token storage
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

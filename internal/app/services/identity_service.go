package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/app/repositories"
	"github.com/acadsys/aulario/internal/db"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
	"github.com/acadsys/aulario/internal/pkg/auth"
	"github.com/acadsys/aulario/internal/pkg/helpers"
)

// IdentityService handles user creation and person management
type IdentityService struct {
	database   *db.PostgresDB
	userRepo   UserStore
	personRepo PersonStore
	seatRepo   SeatStore
	logger     zerolog.Logger
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(
	database *db.PostgresDB,
	userRepo UserStore,
	personRepo PersonStore,
	seatRepo SeatStore,
	logger zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		database:   database,
		userRepo:   userRepo,
		personRepo: personRepo,
		seatRepo:   seatRepo,
		logger:     logger,
	}
}

// CreateUser creates a user together with its person in one transaction. The
// person payload's type field decides whether a student or professor row is
// created; admin users carry no person at all.
func (s *IdentityService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	if err := s.validateCreateUser(req); err != nil {
		return nil, err
	}

	if req.Person != nil {
		taken, err := s.personRepo.EmailExists(ctx, strings.ToLower(strings.TrimSpace(req.Person.Email)))
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Password: hashed,
		Role:     req.Role,
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		personRepo := s.personRepo.WithTx(tx)

		if req.Person != nil {
			person, err := s.createPersonTx(ctx, personRepo, req.Person)
			if err != nil {
				return err
			}
			user.PersonID = &person.ID
			user.Person = person
		}

		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("User created")

	return user, nil
}

func (s *IdentityService) validateCreateUser(req *dto.CreateUserRequest) error {
	if !req.Role.Valid() {
		return apperrors.NewValidationError("unknown role")
	}
	if len(req.Password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters long")
	}
	if strings.TrimSpace(req.Username) == "" {
		return apperrors.NewValidationError("username cannot be empty")
	}

	switch req.Role {
	case models.RoleAdmin:
		if req.Person != nil {
			return apperrors.NewValidationError("admin users cannot have a person")
		}
	case models.RoleStudent:
		if req.Person == nil || req.Person.Type != models.KindStudent {
			return apperrors.NewValidationError("student users require a STUDENT person")
		}
	case models.RoleProfessor:
		if req.Person == nil || req.Person.Type != models.KindProfessor {
			return apperrors.NewValidationError("professor users require a PROFESSOR person")
		}
		if req.Person.Salary == nil {
			return apperrors.NewValidationError("professor person requires a salary")
		}
	}

	return nil
}

// createPersonTx creates the person, its subtype row and its address
func (s *IdentityService) createPersonTx(ctx context.Context, personRepo *repositories.PersonRepository, payload *dto.PersonPayload) (*models.Person, error) {
	person := &models.Person{
		Kind:  payload.Type,
		Name:  strings.TrimSpace(payload.Name),
		Phone: payload.Phone,
		Email: strings.ToLower(strings.TrimSpace(payload.Email)),
	}

	if err := personRepo.CreatePerson(ctx, person); err != nil {
		return nil, err
	}

	switch payload.Type {
	case models.KindStudent:
		student := &models.Student{Person: *person, StudentNumber: uuid.New()}
		if err := personRepo.CreateStudent(ctx, student); err != nil {
			return nil, err
		}
	case models.KindProfessor:
		professor := &models.Professor{Person: *person, Salary: *payload.Salary}
		if err := personRepo.CreateProfessor(ctx, professor); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("unknown person type")
	}

	if payload.Address != nil {
		address := &models.Address{
			PersonID: person.ID,
			Street:   payload.Address.Street,
			City:     payload.Address.City,
			State:    payload.Address.State,
			Country:  payload.Address.Country,
		}
		if err := personRepo.CreateAddress(ctx, address); err != nil {
			return nil, err
		}
		person.Address = address
	}

	return person, nil
}

// GetPersonByUserID returns the person attached to a user, nil for admins
func (s *IdentityService) GetPersonByUserID(ctx context.Context, userID int64) (*models.Person, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PersonID == nil {
		return nil, nil
	}
	return s.personRepo.GetPersonByID(ctx, *user.PersonID)
}

// GetStudentByUserID resolves the student behind a user account
func (s *IdentityService) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PersonID == nil || user.Role != models.RoleStudent {
		return nil, apperrors.ErrNotAStudent
	}
	return s.personRepo.GetStudentByID(ctx, *user.PersonID)
}

// GetProfessorByUserID resolves the professor behind a user account
func (s *IdentityService) GetProfessorByUserID(ctx context.Context, userID int64) (*models.Professor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PersonID == nil || user.Role != models.RoleProfessor {
		return nil, apperrors.ErrNotAProfessor
	}
	return s.personRepo.GetProfessorByID(ctx, *user.PersonID)
}

// CanAssignStudentToCourse reports whether the student holds no seat in the
// course yet. Pre-flight check for selection widgets; the enrollment
// transaction re-verifies.
func (s *IdentityService) CanAssignStudentToCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	_, err := s.seatRepo.GetSeatForStudentInCourse(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotEnrolled) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// UpdatePerson overwrites the mutable person fields and its address. Subtype
// attributes are left untouched. An unknown person is reported before any
// email conflict; the unique constraint backstops a concurrent email grab.
func (s *IdentityService) UpdatePerson(ctx context.Context, personID int64, req *dto.UpdatePersonRequest) (*models.Person, error) {
	if _, err := s.personRepo.GetPersonByID(ctx, personID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.personRepo.EmailExistsExcept(ctx, email, personID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	var person *models.Person
	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		personRepo := s.personRepo.WithTx(tx)

		current, err := personRepo.GetPersonByID(ctx, personID)
		if err != nil {
			return err
		}

		current.Name = strings.TrimSpace(req.Name)
		current.Phone = req.Phone
		current.Email = email

		if err := personRepo.UpdatePerson(ctx, current); err != nil {
			return err
		}

		if req.Address != nil {
			address := &models.Address{
				PersonID: personID,
				Street:   req.Address.Street,
				City:     req.Address.City,
				State:    req.Address.State,
				Country:  req.Address.Country,
			}
			if err := personRepo.UpsertAddress(ctx, address); err != nil {
				return err
			}
			current.Address = address
		}

		person = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return person, nil
}

// GetPersonsPage returns one page of persons with pagination info
func (s *IdentityService) GetPersonsPage(ctx context.Context, page, size int) ([]*models.Person, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	persons, err := s.personRepo.GetPersonsPage(ctx, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	total, err := s.personRepo.CountPersons(ctx)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return persons, helpers.NewPaginationInfo(total, page, size), nil
}

// SearchStudents returns the lightweight student projection for pickers
func (s *IdentityService) SearchStudents(ctx context.Context) ([]dto.StudentSearchResult, error) {
	return s.personRepo.SearchStudents(ctx)
}

// GetAllProfessors returns every professor for selection widgets
func (s *IdentityService) GetAllProfessors(ctx context.Context) ([]*models.Professor, error) {
	return s.personRepo.GetAllProfessors(ctx)
}

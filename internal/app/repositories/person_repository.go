package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
	"github.com/acadsys/aulario/internal/pkg/dberrors"
)

// PersonRepository handles database operations for persons, addresses and
// the student/professor subtype tables.
type PersonRepository struct {
	db DBTX
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db DBTX) *PersonRepository {
	return &PersonRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PersonRepository) WithTx(tx pgx.Tx) *PersonRepository {
	return &PersonRepository{db: tx}
}

// CreatePerson inserts the base person row and sets its generated id
func (r *PersonRepository) CreatePerson(ctx context.Context, person *models.Person) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO persons (kind, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		person.Kind, person.Name, person.Phone, person.Email).Scan(&person.ID)

	if err != nil {
		if dberrors.IsUniqueViolation(err, "persons_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating person: %w", err)
	}

	return nil
}

// CreateAddress inserts the address owned by a person
func (r *PersonRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO addresses (person_id, street, city, state, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		address.PersonID, address.Street, address.City, address.State, address.Country).
		Scan(&address.ID)

	if err != nil {
		return fmt.Errorf("error creating address: %w", err)
	}

	return nil
}

// CreateStudent inserts the student subtype row for an existing person
func (r *PersonRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO students (person_id, student_number, avg_mark)
		VALUES ($1, $2, $3)`,
		student.ID, student.StudentNumber, student.AvgMark)

	if err != nil {
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// CreateProfessor inserts the professor subtype row for an existing person
func (r *PersonRepository) CreateProfessor(ctx context.Context, professor *models.Professor) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO professors (person_id, salary)
		VALUES ($1, $2)`,
		professor.ID, professor.Salary)

	if err != nil {
		return fmt.Errorf("error creating professor: %w", err)
	}

	return nil
}

// GetPersonByID retrieves a person with its address, if any
func (r *PersonRepository) GetPersonByID(ctx context.Context, id int64) (*models.Person, error) {
	person := &models.Person{}
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, name, phone, email
		FROM persons
		WHERE id = $1`,
		id).Scan(&person.ID, &person.Kind, &person.Name, &person.Phone, &person.Email)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, fmt.Errorf("error retrieving person: %w", err)
	}

	address, err := r.getAddressByPersonID(ctx, id)
	if err != nil {
		return nil, err
	}
	person.Address = address

	return person, nil
}

// getAddressByPersonID retrieves the address owned by a person, nil when none
func (r *PersonRepository) getAddressByPersonID(ctx context.Context, personID int64) (*models.Address, error) {
	address := &models.Address{}
	err := r.db.QueryRow(ctx, `
		SELECT id, person_id, street, city, state, country
		FROM addresses
		WHERE person_id = $1`,
		personID).Scan(
		&address.ID, &address.PersonID, &address.Street,
		&address.City, &address.State, &address.Country)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving address: %w", err)
	}

	return address, nil
}

// GetStudentByID retrieves a fully loaded student (person, address, seats)
func (r *PersonRepository) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	student := &models.Student{}
	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.kind, p.name, p.phone, p.email, s.student_number, s.avg_mark
		FROM persons p
		JOIN students s ON s.person_id = p.id
		WHERE p.id = $1`,
		id).Scan(
		&student.ID, &student.Kind, &student.Name, &student.Phone,
		&student.Email, &student.StudentNumber, &student.AvgMark)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	address, err := r.getAddressByPersonID(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Address = address

	seats, err := r.getSeatsByStudentID(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Seats = seats

	return student, nil
}

// getSeatsByStudentID retrieves all seats held by a student
func (r *PersonRepository) getSeatsByStudentID(ctx context.Context, studentID int64) ([]*models.Seat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, course_id, student_id, year, mark
		FROM seats
		WHERE student_id = $1
		ORDER BY id`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student seats: %w", err)
	}
	defer rows.Close()

	var seats []*models.Seat
	for rows.Next() {
		seat := &models.Seat{}
		if err := rows.Scan(&seat.ID, &seat.CourseID, &seat.StudentID, &seat.Year, &seat.Mark); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

// GetProfessorByID retrieves a fully loaded professor with taught courses
func (r *PersonRepository) GetProfessorByID(ctx context.Context, id int64) (*models.Professor, error) {
	professor := &models.Professor{}
	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.kind, p.name, p.phone, p.email, pr.salary
		FROM persons p
		JOIN professors pr ON pr.person_id = p.id
		WHERE p.id = $1`,
		id).Scan(
		&professor.ID, &professor.Kind, &professor.Name, &professor.Phone,
		&professor.Email, &professor.Salary)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfessorNotFound
		}
		return nil, fmt.Errorf("error retrieving professor: %w", err)
	}

	address, err := r.getAddressByPersonID(ctx, id)
	if err != nil {
		return nil, err
	}
	professor.Address = address

	rows, err := r.db.Query(ctx, `
		SELECT id, name, professor_id
		FROM courses
		WHERE professor_id = $1
		ORDER BY id`,
		id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving professor courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(&course.ID, &course.Name, &course.ProfessorID); err != nil {
			return nil, err
		}
		professor.Courses = append(professor.Courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return professor, nil
}

// EmailExists checks if any person already uses the email
func (r *PersonRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM persons WHERE email = $1)`,
		email).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}

	return exists, nil
}

// EmailExistsExcept checks if the email is used by any person other than the
// given one. Used on person update when the email changes.
func (r *PersonRepository) EmailExistsExcept(ctx context.Context, email string, personID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM persons WHERE email = $1 AND id != $2)`,
		email, personID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}

	return exists, nil
}

// UpdatePerson overwrites the base person fields
func (r *PersonRepository) UpdatePerson(ctx context.Context, person *models.Person) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE persons
		SET name = $1, phone = $2, email = $3
		WHERE id = $4`,
		person.Name, person.Phone, person.Email, person.ID)

	if err != nil {
		if dberrors.IsUniqueViolation(err, "persons_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error updating person: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPersonNotFound
	}

	return nil
}

// UpsertAddress updates the person's address, creating it when absent
func (r *PersonRepository) UpsertAddress(ctx context.Context, address *models.Address) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO addresses (person_id, street, city, state, country)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (person_id) DO UPDATE
		SET street = EXCLUDED.street, city = EXCLUDED.city,
		    state = EXCLUDED.state, country = EXCLUDED.country
		RETURNING id`,
		address.PersonID, address.Street, address.City, address.State, address.Country).
		Scan(&address.ID)

	if err != nil {
		return fmt.Errorf("error upserting address: %w", err)
	}

	return nil
}

// RecomputeStudentAverage recomputes avg_mark from the student's seats.
// Runs in the same transaction as the seat mutation that triggered it.
func (r *PersonRepository) RecomputeStudentAverage(ctx context.Context, studentID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE students
		SET avg_mark = COALESCE(
			(SELECT AVG(mark) FROM seats WHERE student_id = $1 AND mark IS NOT NULL), 0)
		WHERE person_id = $1`,
		studentID)

	if err != nil {
		return fmt.Errorf("error recomputing student average: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// GetPersonsPage retrieves one page of persons ordered by id ascending
func (r *PersonRepository) GetPersonsPage(ctx context.Context, offset uint64, limit int) ([]*models.Person, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, kind, name, phone, email
		FROM persons
		ORDER BY id ASC
		OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		person := &models.Person{}
		if err := rows.Scan(&person.ID, &person.Kind, &person.Name, &person.Phone, &person.Email); err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return persons, nil
}

// CountPersons counts all persons
func (r *PersonRepository) CountPersons(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting persons: %w", err)
	}
	return count, nil
}

// SearchStudents returns the lightweight student projection ordered by name
func (r *PersonRepository) SearchStudents(ctx context.Context) ([]dto.StudentSearchResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, s.student_number
		FROM persons p
		JOIN students s ON s.person_id = p.id
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("error searching students: %w", err)
	}
	defer rows.Close()

	var results []dto.StudentSearchResult
	for rows.Next() {
		var result dto.StudentSearchResult
		if err := rows.Scan(&result.ID, &result.Name, &result.StudentNumber); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// GetAllProfessors retrieves all professors for selection widgets
func (r *PersonRepository) GetAllProfessors(ctx context.Context) ([]*models.Professor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.kind, p.name, p.phone, p.email, pr.salary
		FROM persons p
		JOIN professors pr ON pr.person_id = p.id
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing professors: %w", err)
	}
	defer rows.Close()

	var professors []*models.Professor
	for rows.Next() {
		professor := &models.Professor{}
		if err := rows.Scan(
			&professor.ID, &professor.Kind, &professor.Name,
			&professor.Phone, &professor.Email, &professor.Salary); err != nil {
			return nil, err
		}
		professors = append(professors, professor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return professors, nil
}

// StudentExists checks if a student subtype row exists for the id
func (r *PersonRepository) StudentExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE person_id = $1)`,
		id).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking student: %w", err)
	}

	return exists, nil
}

// ProfessorExists checks if a professor subtype row exists for the id
func (r *PersonRepository) ProfessorExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM professors WHERE person_id = $1)`,
		id).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking professor: %w", err)
	}

	return exists, nil
}

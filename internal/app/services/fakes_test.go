package services

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/app/repositories"
	"github.com/acadsys/aulario/internal/pkg/apperrors"
)

// In-memory stores backing the service tests. WithTx is never reached in
// the paths under test; it returns nil so any accidental use fails loudly.

type fakeUserStore struct {
	users map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) WithTx(tx pgx.Tx) *repositories.UserRepository { return nil }

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

type fakePersonStore struct {
	persons    map[int64]*models.Person
	students   map[int64]*models.Student
	professors map[int64]*models.Professor
	emails     map[string]int64
	recomputed []int64
}

func newFakePersonStore() *fakePersonStore {
	return &fakePersonStore{
		persons:    make(map[int64]*models.Person),
		students:   make(map[int64]*models.Student),
		professors: make(map[int64]*models.Professor),
		emails:     make(map[string]int64),
	}
}

func (f *fakePersonStore) WithTx(tx pgx.Tx) *repositories.PersonRepository { return nil }

func (f *fakePersonStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if _, ok := f.emails[person.Email]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	person.ID = int64(len(f.persons) + 1)
	f.persons[person.ID] = person
	f.emails[person.Email] = person.ID
	return nil
}

func (f *fakePersonStore) CreateAddress(ctx context.Context, address *models.Address) error {
	return nil
}

func (f *fakePersonStore) CreateStudent(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakePersonStore) CreateProfessor(ctx context.Context, professor *models.Professor) error {
	f.professors[professor.ID] = professor
	return nil
}

func (f *fakePersonStore) GetPersonByID(ctx context.Context, id int64) (*models.Person, error) {
	if p, ok := f.persons[id]; ok {
		return p, nil
	}
	return nil, apperrors.ErrPersonNotFound
}

func (f *fakePersonStore) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakePersonStore) GetProfessorByID(ctx context.Context, id int64) (*models.Professor, error) {
	if p, ok := f.professors[id]; ok {
		return p, nil
	}
	return nil, apperrors.ErrProfessorNotFound
}

func (f *fakePersonStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.emails[email]
	return ok, nil
}

func (f *fakePersonStore) EmailExistsExcept(ctx context.Context, email string, personID int64) (bool, error) {
	owner, ok := f.emails[email]
	return ok && owner != personID, nil
}

func (f *fakePersonStore) UpdatePerson(ctx context.Context, person *models.Person) error {
	if _, ok := f.persons[person.ID]; !ok {
		return apperrors.ErrPersonNotFound
	}
	f.persons[person.ID] = person
	return nil
}

func (f *fakePersonStore) UpsertAddress(ctx context.Context, address *models.Address) error {
	return nil
}

func (f *fakePersonStore) RecomputeStudentAverage(ctx context.Context, studentID int64) error {
	f.recomputed = append(f.recomputed, studentID)
	return nil
}

func (f *fakePersonStore) GetPersonsPage(ctx context.Context, offset uint64, limit int) ([]*models.Person, error) {
	var persons []*models.Person
	for _, p := range f.persons {
		persons = append(persons, p)
	}
	sort.Slice(persons, func(i, j int) bool { return persons[i].ID < persons[j].ID })
	if int(offset) >= len(persons) {
		return nil, nil
	}
	persons = persons[offset:]
	if len(persons) > limit {
		persons = persons[:limit]
	}
	return persons, nil
}

func (f *fakePersonStore) CountPersons(ctx context.Context) (int64, error) {
	return int64(len(f.persons)), nil
}

func (f *fakePersonStore) SearchStudents(ctx context.Context) ([]dto.StudentSearchResult, error) {
	var results []dto.StudentSearchResult
	for _, s := range f.students {
		results = append(results, dto.StudentSearchResult{ID: s.ID, Name: s.Name})
	}
	return results, nil
}

func (f *fakePersonStore) GetAllProfessors(ctx context.Context) ([]*models.Professor, error) {
	var professors []*models.Professor
	for _, p := range f.professors {
		professors = append(professors, p)
	}
	return professors, nil
}

func (f *fakePersonStore) StudentExists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.students[id]
	return ok, nil
}

func (f *fakePersonStore) ProfessorExists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.professors[id]
	return ok, nil
}

type fakeCourseStore struct {
	courses map[int64]*models.Course
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: make(map[int64]*models.Course)}
}

func (f *fakeCourseStore) WithTx(tx pgx.Tx) *repositories.CourseRepository { return nil }

func (f *fakeCourseStore) Create(ctx context.Context, course *models.Course) error {
	course.ID = int64(len(f.courses) + 1)
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.courses[id]
	return ok, nil
}

func (f *fakeCourseStore) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, apperrors.ErrCourseNotFound
}

func (f *fakeCourseStore) sorted() []*models.Course {
	var courses []*models.Course
	for _, c := range f.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func (f *fakeCourseStore) GetPage(ctx context.Context, offset uint64, limit int) ([]*models.Course, error) {
	courses := f.sorted()
	if int(offset) >= len(courses) {
		return nil, nil
	}
	courses = courses[offset:]
	if len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (f *fakeCourseStore) GetAll(ctx context.Context) ([]*models.Course, error) {
	return f.sorted(), nil
}

func (f *fakeCourseStore) GetByProfessorID(ctx context.Context, professorID int64) ([]*models.Course, error) {
	var courses []*models.Course
	for _, c := range f.sorted() {
		if c.ProfessorID == professorID {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (f *fakeCourseStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.courses)), nil
}

type fakeSeatStore struct {
	seats       map[int64]*models.Seat
	enrollments []models.Enrollment
}

func newFakeSeatStore() *fakeSeatStore {
	return &fakeSeatStore{seats: make(map[int64]*models.Seat)}
}

func (f *fakeSeatStore) WithTx(tx pgx.Tx) *repositories.SeatRepository { return nil }

func (f *fakeSeatStore) Insert(ctx context.Context, seat *models.Seat) error {
	seat.ID = int64(len(f.seats) + 1)
	f.seats[seat.ID] = seat
	return nil
}

func (f *fakeSeatStore) InsertEmpty(ctx context.Context, courseID int64, count int, year time.Time) error {
	for i := 0; i < count; i++ {
		if err := f.Insert(ctx, &models.Seat{CourseID: courseID, Year: year}); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSeatStore) LockFreeSeat(ctx context.Context, courseID int64) (*models.Seat, error) {
	var free *models.Seat
	for _, seat := range f.seats {
		if seat.CourseID != courseID || seat.StudentID != nil {
			continue
		}
		if free == nil || seat.ID < free.ID {
			free = seat
		}
	}
	if free == nil {
		return nil, apperrors.ErrCourseFull
	}
	return free, nil
}

func (f *fakeSeatStore) AssignSeat(ctx context.Context, seatID, studentID int64) error {
	seat, ok := f.seats[seatID]
	if !ok || seat.StudentID != nil {
		return apperrors.ErrCourseFull
	}
	seat.StudentID = &studentID
	return nil
}

func (f *fakeSeatStore) GetSeatForStudentInCourse(ctx context.Context, courseID, studentID int64) (*models.Seat, error) {
	for _, seat := range f.seats {
		if seat.CourseID == courseID && seat.StudentID != nil && *seat.StudentID == studentID {
			return seat, nil
		}
	}
	return nil, apperrors.ErrNotEnrolled
}

func (f *fakeSeatStore) ClearSeat(ctx context.Context, seatID int64) error {
	seat, ok := f.seats[seatID]
	if !ok {
		return apperrors.ErrNotEnrolled
	}
	seat.StudentID = nil
	seat.Mark = nil
	return nil
}

func (f *fakeSeatStore) SetMark(ctx context.Context, seatID int64, mark float64) error {
	seat, ok := f.seats[seatID]
	if !ok {
		return apperrors.ErrNotEnrolled
	}
	seat.Mark = &mark
	return nil
}

func (f *fakeSeatStore) GetEnrollmentsForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return f.enrollments, nil
}

type fakeToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenStore struct {
	tokens        map[string]*fakeToken
	revokedAllFor []int64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*fakeToken)}
}

func (f *fakeTokenStore) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	if _, ok := f.tokens[token]; ok {
		return apperrors.ErrTokenInvalid
	}
	f.tokens[token] = &fakeToken{userID: userID, expiry: expiryDate}
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error) {
	t, ok := f.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	}
	if t.revoked {
		return t.userID, time.Time{}, apperrors.ErrTokenRevoked
	}
	if t.expiry.Before(time.Now()) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (f *fakeTokenStore) RevokeToken(ctx context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	for _, t := range f.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	f.revokedAllFor = append(f.revokedAllFor, userID)
	return nil
}

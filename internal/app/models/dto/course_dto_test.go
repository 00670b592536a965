package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acadsys/aulario/internal/app/models"
)

func fptr(f float64) *float64 { return &f }

func iptr(i int64) *int64 { return &i }

func TestFromSeat(t *testing.T) {
	year := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty seat", func(t *testing.T) {
		seat := &models.Seat{ID: 1, CourseID: 2, Year: year}
		got := FromSeat(seat)
		if got.ID != 1 || got.Student != nil || got.Mark != nil {
			t.Fatalf("FromSeat() = %+v, want empty seat projection", got)
		}
	})

	t.Run("occupied marked seat", func(t *testing.T) {
		student := &models.Student{}
		student.ID = 5
		student.Name = "Ada"
		student.AvgMark = 7.5
		seat := &models.Seat{
			ID: 1, CourseID: 2, Year: year,
			StudentID: iptr(5), Mark: fptr(9),
			Student: student,
		}
		got := FromSeat(seat)
		if got.Student == nil || got.Student.ID != 5 || got.Student.Name != "Ada" {
			t.Fatalf("FromSeat() student = %+v, want id 5 name Ada", got.Student)
		}
		if got.Mark == nil || *got.Mark != 9 {
			t.Fatalf("FromSeat() mark = %v, want 9", got.Mark)
		}
	})
}

func TestFromCourse(t *testing.T) {
	professor := &models.Professor{}
	professor.ID = 10
	professor.Name = "Turing"

	course := &models.Course{
		ID:          1,
		Name:        "Algorithms",
		ProfessorID: 10,
		Professor:   professor,
		Seats:       []*models.Seat{{ID: 1}, {ID: 2, StudentID: iptr(5)}},
	}

	got := FromCourse(course)
	if got.Name != "Algorithms" {
		t.Fatalf("FromCourse() name = %q", got.Name)
	}
	if got.Professor.ID != 10 || got.Professor.Name != "Turing" {
		t.Fatalf("FromCourse() professor = %+v", got.Professor)
	}
	if len(got.Seats) != 2 {
		t.Fatalf("FromCourse() seats = %d, want 2", len(got.Seats))
	}

	t.Run("professor not loaded", func(t *testing.T) {
		bare := &models.Course{ID: 2, Name: "Logic", ProfessorID: 11}
		got := FromCourse(bare)
		if got.Professor.ID != 11 || got.Professor.Name != "" {
			t.Fatalf("FromCourse() professor = %+v, want id-only summary", got.Professor)
		}
	})

	// The assignment endpoints answer with this projection, so a freshly
	// occupied seat has to surface its student.
	t.Run("occupied seats carry their students", func(t *testing.T) {
		student := &models.Student{}
		student.ID = 5
		student.Name = "Ada"
		assigned := &models.Course{
			ID: 3, Name: "Databases", ProfessorID: 10, Professor: professor,
			Seats: []*models.Seat{
				{ID: 1, StudentID: iptr(5), Student: student},
				{ID: 2},
			},
		}
		got := FromCourse(assigned)
		if len(got.Seats) != 2 {
			t.Fatalf("FromCourse() seats = %d, want 2", len(got.Seats))
		}
		if got.Seats[0].Student == nil || got.Seats[0].Student.ID != 5 {
			t.Fatalf("assigned seat student = %+v, want id 5", got.Seats[0].Student)
		}
		if got.Seats[1].Student != nil {
			t.Fatalf("free seat student = %+v, want nil", got.Seats[1].Student)
		}
	})
}

func TestFromStudent(t *testing.T) {
	year := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		Person: models.Person{
			ID:      5,
			Kind:    models.KindStudent,
			Name:    "Ada",
			Phone:   "+54 11 5555 0100",
			Email:   "ada@example.edu",
			Address: &models.Address{PersonID: 5, City: "Buenos Aires", Country: "Argentina"},
		},
		AvgMark: 8.5,
		Seats:   []*models.Seat{{ID: 1, CourseID: 2, Year: year, StudentID: iptr(5), Mark: fptr(8.5)}},
	}

	got := FromStudent(student)
	if got.ID != 5 || got.Email != "ada@example.edu" || got.AvgMark != 8.5 {
		t.Fatalf("FromStudent() = %+v", got)
	}
	if got.Address == nil || got.Address.City != "Buenos Aires" {
		t.Fatalf("FromStudent() address = %+v, want Buenos Aires", got.Address)
	}
	if len(got.Seats) != 1 || got.Seats[0].Mark == nil || *got.Seats[0].Mark != 8.5 {
		t.Fatalf("FromStudent() seats = %+v", got.Seats)
	}

	t.Run("nil student", func(t *testing.T) {
		if got := FromStudent(nil); got.ID != 0 || got.Address != nil {
			t.Fatalf("FromStudent(nil) = %+v, want zero value", got)
		}
	})
}

// TestSetMarkRequestBinding checks the binding rules the HTTP layer applies:
// a body without a mark must be rejected rather than read as mark 0.
func TestSetMarkRequestBinding(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "missing mark", payload: `{}`, wantErr: true},
		{name: "null mark", payload: `{"mark": null}`, wantErr: true},
		{name: "zero mark", payload: `{"mark": 0}`},
		{name: "top mark", payload: `{"mark": 10}`},
		{name: "negative mark", payload: `{"mark": -1}`, wantErr: true},
		{name: "mark above range", payload: `{"mark": 10.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SetMarkRequest
			if err := json.Unmarshal([]byte(tt.payload), &req); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			err := v.Struct(req)
			if tt.wantErr && err == nil {
				t.Fatal("expected a binding error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected binding error: %v", err)
			}
		})
	}
}

func TestCreateUserRequestDecode(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind models.PersonKind
		salary   bool
	}{
		{
			name: "student person",
			payload: `{
				"username": "ada",
				"password": "secret123",
				"role": "STUDENT",
				"person": {"type": "STUDENT", "name": "Ada Lovelace", "email": "ada@example.edu"}
			}`,
			wantKind: models.KindStudent,
		},
		{
			name: "professor person with salary",
			payload: `{
				"username": "alan",
				"password": "secret123",
				"role": "PROFESSOR",
				"person": {"type": "PROFESSOR", "name": "Alan Turing", "email": "alan@example.edu", "salary": 90000}
			}`,
			wantKind: models.KindProfessor,
			salary:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateUserRequest
			if err := json.Unmarshal([]byte(tt.payload), &req); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if req.Person == nil {
				t.Fatal("person payload missing after decode")
			}
			if req.Person.Type != tt.wantKind {
				t.Fatalf("person type = %s, want %s", req.Person.Type, tt.wantKind)
			}
			if tt.salary && (req.Person.Salary == nil || *req.Person.Salary != 90000) {
				t.Fatalf("salary = %v, want 90000", req.Person.Salary)
			}
		})
	}

	t.Run("admin without person", func(t *testing.T) {
		var req CreateUserRequest
		payload := `{"username": "root", "password": "secret123", "role": "ADMIN"}`
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			t.Fatalf("Unmarshal() error: %v", err)
		}
		if req.Person != nil {
			t.Fatalf("person = %+v, want nil", req.Person)
		}
	})
}

package models

import (
	"time"
)

// Course defines the course model based on the 'courses' table.
// A course is taught by exactly one professor and owns its seats.
type Course struct {
	ID          int64  `json:"id" db:"id" example:"1"`
	Name        string `json:"name" db:"name" example:"Algorithms"`
	ProfessorID int64  `json:"professorId" db:"professor_id" example:"3"`

	// Relations (populated when needed)
	Professor *Professor `json:"professor,omitempty"`
	Seats     []*Seat    `json:"seats,omitempty"`
}

// Seat models one enrollment slot of a course in a given year. The course
// side is always set; the student side is nil while the seat is free, and
// the mark is nil until one is recorded.
type Seat struct {
	ID        int64     `json:"id" db:"id"`
	CourseID  int64     `json:"courseId" db:"course_id"`
	StudentID *int64    `json:"studentId,omitempty" db:"student_id"`
	Year      time.Time `json:"year" db:"year"`
	Mark      *float64  `json:"mark,omitempty" db:"mark"`

	// Relation (populated when needed)
	Student *Student `json:"student,omitempty"`
}

// Enrollment is the flat seat-with-course projection used for a student's
// own course view.
type Enrollment struct {
	CourseID   int64     `json:"courseId" db:"course_id"`
	CourseName string    `json:"courseName" db:"course_name"`
	Year       time.Time `json:"year" db:"year"`
	Mark       *float64  `json:"mark,omitempty" db:"mark"`
}

// Occupied reports whether the seat has a student assigned
func (s *Seat) Occupied() bool {
	return s.StudentID != nil
}

// FreeSeat returns the lowest-id seat with no student, or nil when the
// course is full. Seat selection is deterministic within one call.
func (c *Course) FreeSeat() *Seat {
	var free *Seat
	for _, seat := range c.Seats {
		if seat.Occupied() {
			continue
		}
		if free == nil || seat.ID < free.ID {
			free = seat
		}
	}
	return free
}

// SeatOf returns the seat held by the given student, or nil when the
// student is not enrolled in the course.
func (c *Course) SeatOf(studentID int64) *Seat {
	for _, seat := range c.Seats {
		if seat.StudentID != nil && *seat.StudentID == studentID {
			return seat
		}
	}
	return nil
}

// OccupiedSeats returns the seats that have a student assigned
func (c *Course) OccupiedSeats() []*Seat {
	var occupied []*Seat
	for _, seat := range c.Seats {
		if seat.Occupied() {
			occupied = append(occupied, seat)
		}
	}
	return occupied
}

package models

import (
	"github.com/google/uuid"
)

// Person holds the attributes shared by students and professors,
// based on the 'persons' table.
type Person struct {
	ID    int64      `json:"id" db:"id" example:"1"`
	Kind  PersonKind `json:"kind" db:"kind" example:"STUDENT"`
	Name  string     `json:"name" db:"name" example:"Jane Doe"`
	Phone string     `json:"phone" db:"phone" example:"+54 11 5555 0100"`
	Email string     `json:"email" db:"email" example:"jane@example.edu"`

	// Relation (populated when needed)
	Address *Address `json:"address,omitempty"`
}

// Address is owned by exactly one person and is created and destroyed
// with its owner.
type Address struct {
	ID       int64  `json:"id" db:"id"`
	PersonID int64  `json:"personId" db:"person_id"`
	Street   string `json:"street" db:"street"`
	City     string `json:"city" db:"city"`
	State    string `json:"state" db:"state"`
	Country  string `json:"country" db:"country"`
}

// Student extends Person with a system-generated student number and the
// derived average mark. The row in 'students' shares the person id.
type Student struct {
	Person
	StudentNumber uuid.UUID `json:"studentNumber" db:"student_number"`
	AvgMark       float64   `json:"avgMark" db:"avg_mark"`

	// Relation (populated when needed)
	Seats []*Seat `json:"seats,omitempty"`
}

// Professor extends Person with a salary. The row in 'professors' shares
// the person id.
type Professor struct {
	Person
	Salary float64 `json:"salary" db:"salary"`

	// Relation (populated when needed)
	Courses []*Course `json:"courses,omitempty"`
}

// AverageMark returns the mean of the non-nil marks over the given seats,
// or 0 when no seat has a mark yet. avg_mark is derived: it is never set
// directly, only recomputed from the seat set.
func AverageMark(seats []*Seat) float64 {
	var sum float64
	var n int
	for _, seat := range seats {
		if seat != nil && seat.Mark != nil {
			sum += *seat.Mark
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

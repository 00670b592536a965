package models

import (
	"testing"
	"time"
)

func fptr(f float64) *float64 { return &f }

func iptr(i int64) *int64 { return &i }

func TestAverageMark(t *testing.T) {
	tests := []struct {
		name  string
		seats []*Seat
		want  float64
	}{
		{name: "no seats", seats: nil, want: 0},
		{name: "seats without marks", seats: []*Seat{{ID: 1}, {ID: 2}}, want: 0},
		{name: "single mark", seats: []*Seat{{ID: 1, Mark: fptr(8.5)}}, want: 8.5},
		{
			name:  "mean of marked seats only",
			seats: []*Seat{{ID: 1, Mark: fptr(6)}, {ID: 2}, {ID: 3, Mark: fptr(10)}},
			want:  8,
		},
		{
			name:  "nil seat entries ignored",
			seats: []*Seat{nil, {ID: 2, Mark: fptr(4)}},
			want:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageMark(tt.seats); got != tt.want {
				t.Fatalf("AverageMark() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEnrollmentLifecycle walks the whole seat lifecycle on the model types:
// two empty seats, one assignment, a duplicate-assignment check, a mark,
// then unassignment back to an empty average.
func TestEnrollmentLifecycle(t *testing.T) {
	year := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	course := &Course{
		ID:          1,
		Name:        "Algorithms",
		ProfessorID: 10,
		Seats: []*Seat{
			{ID: 1, CourseID: 1, Year: year},
			{ID: 2, CourseID: 1, Year: year},
		},
	}
	const studentID int64 = 20

	if len(course.Seats) != 2 {
		t.Fatalf("expected 2 seats, got %d", len(course.Seats))
	}
	for _, seat := range course.Seats {
		if seat.Occupied() || seat.Mark != nil {
			t.Fatalf("seat %d should start empty and unmarked", seat.ID)
		}
	}

	// Assign: lowest-id free seat.
	free := course.FreeSeat()
	if free == nil || free.ID != 1 {
		t.Fatalf("FreeSeat() = %+v, want seat 1", free)
	}
	free.StudentID = iptr(studentID)

	if seat := course.SeatOf(studentID); seat == nil || seat.ID != 1 {
		t.Fatalf("SeatOf(%d) = %+v, want seat 1", studentID, seat)
	}

	// A second assignment must be detectable as a duplicate before any
	// seat mutation happens.
	if course.SeatOf(studentID) == nil {
		t.Fatal("duplicate assignment not detected")
	}
	if got := len(course.OccupiedSeats()); got != 1 {
		t.Fatalf("occupied seats = %d, want 1", got)
	}

	// Mark.
	seat := course.SeatOf(studentID)
	seat.Mark = fptr(8.5)
	if got := AverageMark([]*Seat{seat}); got != 8.5 {
		t.Fatalf("average after marking = %v, want 8.5", got)
	}

	// Unassign clears student and mark together.
	seat.StudentID = nil
	seat.Mark = nil
	if course.SeatOf(studentID) != nil {
		t.Fatal("student still holds a seat after unassignment")
	}
	if got := AverageMark(nil); got != 0 {
		t.Fatalf("average after unassignment = %v, want 0", got)
	}
	if free := course.FreeSeat(); free == nil || free.ID != 1 {
		t.Fatalf("freed seat should be assignable again, FreeSeat() = %+v", free)
	}
}

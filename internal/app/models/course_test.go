package models

import "testing"

func TestFreeSeat(t *testing.T) {
	tests := []struct {
		name   string
		seats  []*Seat
		wantID int64
		full   bool
	}{
		{name: "no seats", seats: nil, full: true},
		{
			name:  "all occupied",
			seats: []*Seat{{ID: 1, StudentID: iptr(5)}, {ID: 2, StudentID: iptr(6)}},
			full:  true,
		},
		{
			name:   "picks lowest id",
			seats:  []*Seat{{ID: 3}, {ID: 1}, {ID: 2, StudentID: iptr(5)}},
			wantID: 1,
		},
		{
			name:   "single free seat",
			seats:  []*Seat{{ID: 1, StudentID: iptr(5)}, {ID: 2}},
			wantID: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := &Course{Seats: tt.seats}
			seat := course.FreeSeat()
			if tt.full {
				if seat != nil {
					t.Fatalf("FreeSeat() = %+v, want nil for a full course", seat)
				}
				return
			}
			if seat == nil || seat.ID != tt.wantID {
				t.Fatalf("FreeSeat() = %+v, want seat %d", seat, tt.wantID)
			}
		})
	}
}

func TestSeatOf(t *testing.T) {
	course := &Course{Seats: []*Seat{
		{ID: 1, StudentID: iptr(5)},
		{ID: 2},
		{ID: 3, StudentID: iptr(7)},
	}}

	if seat := course.SeatOf(7); seat == nil || seat.ID != 3 {
		t.Fatalf("SeatOf(7) = %+v, want seat 3", seat)
	}
	if seat := course.SeatOf(99); seat != nil {
		t.Fatalf("SeatOf(99) = %+v, want nil", seat)
	}
}

func TestOccupiedSeats(t *testing.T) {
	course := &Course{Seats: []*Seat{
		{ID: 1, StudentID: iptr(5)},
		{ID: 2},
		{ID: 3, StudentID: iptr(7)},
	}}

	occupied := course.OccupiedSeats()
	if len(occupied) != 2 {
		t.Fatalf("OccupiedSeats() returned %d seats, want 2", len(occupied))
	}
	if occupied[0].ID != 1 || occupied[1].ID != 3 {
		t.Fatalf("OccupiedSeats() = seats %d and %d, want 1 and 3", occupied[0].ID, occupied[1].ID)
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleStudent, RoleProfessor} {
		if !role.Valid() {
			t.Errorf("Valid() = false for %s", role)
		}
	}
	if Role("TEACHER").Valid() {
		t.Error("Valid() = true for unknown role")
	}
}

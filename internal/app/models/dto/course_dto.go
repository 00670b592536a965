package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/acadsys/aulario/internal/app/models"
)

// SeatPayload describes one pre-built seat in the explicit variant of
// course creation. Year defaults to the current date when omitted.
type SeatPayload struct {
	Year      *time.Time `json:"year,omitempty"`
	Mark      *float64   `json:"mark,omitempty"`
	StudentID *int64     `json:"studentId,omitempty"`
}

// CreateCourseRequest represents the "create course" input: either
// SeatsAmount (N empty seats) or an explicit seat list.
type CreateCourseRequest struct {
	Name        string        `json:"name" binding:"required"`
	ProfessorID int64         `json:"professorId" binding:"required,min=1"`
	SeatsAmount *int          `json:"seatsAmount,omitempty"`
	Seats       []SeatPayload `json:"seats,omitempty"`
}

// BulkSeat is one entry of the bulk seat merge. Unlike SeatPayload the
// student is mandatory here.
type BulkSeat struct {
	StudentID int64      `json:"studentId" binding:"required,min=1"`
	Year      *time.Time `json:"year,omitempty"`
	Mark      *float64   `json:"mark,omitempty"`
}

// BulkAssignRequest merges occupied seats into a course's seat set
type BulkAssignRequest struct {
	Seats []BulkSeat `json:"seats" binding:"required,min=1,dive"`
}

// AssignStudentRequest assigns one student to a free seat of a course
type AssignStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required,min=1"`
}

// SetMarkRequest records a mark for a student's seat in a course. The mark
// is a pointer so a missing field fails binding instead of recording 0.
type SetMarkRequest struct {
	Mark *float64 `json:"mark" binding:"required,gte=0,lte=10"`
}

// StudentSummary is the student projection embedded in seat responses
type StudentSummary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StudentNumber uuid.UUID `json:"studentNumber"`
	AvgMark       float64   `json:"avgMark"`
}

// StudentResponse is the fully loaded student projection returned by the
// students-in-course listing
type StudentResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone,omitempty"`
	Email         string          `json:"email"`
	StudentNumber uuid.UUID       `json:"studentNumber"`
	AvgMark       float64         `json:"avgMark"`
	Address       *AddressPayload `json:"address,omitempty"`
	Seats         []SeatResponse  `json:"seats,omitempty"`
}

// SeatResponse represents one seat of a course
type SeatResponse struct {
	ID      int64           `json:"id"`
	Year    time.Time       `json:"year"`
	Mark    *float64        `json:"mark,omitempty"`
	Student *StudentSummary `json:"student,omitempty"`
}

// ProfessorSummary is the professor projection embedded in course responses
type ProfessorSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CourseResponse represents a course with its professor and seats
type CourseResponse struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Professor ProfessorSummary `json:"professor"`
	Seats     []SeatResponse   `json:"seats"`
}

// CourseListResponse is the paginated course listing
type CourseListResponse struct {
	Courses    []CourseResponse `json:"courses"`
	Pagination PaginationInfo   `json:"pagination"`
}

// MarkResponse is the projection returned by the set-mark operation
type MarkResponse struct {
	Year    time.Time      `json:"year"`
	Student StudentSummary `json:"student"`
	Mark    *float64       `json:"mark"`
}

// EnrollmentResponse is one row of a student's own course view
type EnrollmentResponse struct {
	CourseID   int64     `json:"courseId"`
	CourseName string    `json:"courseName"`
	Year       time.Time `json:"year"`
	Mark       *float64  `json:"mark,omitempty"`
}

// FromStudentSummary builds the seat-level student projection
func FromStudentSummary(s *models.Student) *StudentSummary {
	if s == nil {
		return nil
	}
	return &StudentSummary{
		ID:            s.ID,
		Name:          s.Name,
		StudentNumber: s.StudentNumber,
		AvgMark:       s.AvgMark,
	}
}

// FromStudent builds the fully loaded student projection
func FromStudent(s *models.Student) StudentResponse {
	if s == nil {
		return StudentResponse{}
	}
	resp := StudentResponse{
		ID:            s.ID,
		Name:          s.Name,
		Phone:         s.Phone,
		Email:         s.Email,
		StudentNumber: s.StudentNumber,
		AvgMark:       s.AvgMark,
	}
	if s.Address != nil {
		resp.Address = &AddressPayload{
			Street:  s.Address.Street,
			City:    s.Address.City,
			State:   s.Address.State,
			Country: s.Address.Country,
		}
	}
	for _, seat := range s.Seats {
		resp.Seats = append(resp.Seats, FromSeat(seat))
	}
	return resp
}

// FromSeat converts a model seat to its response projection
func FromSeat(seat *models.Seat) SeatResponse {
	if seat == nil {
		return SeatResponse{}
	}
	return SeatResponse{
		ID:      seat.ID,
		Year:    seat.Year,
		Mark:    seat.Mark,
		Student: FromStudentSummary(seat.Student),
	}
}

// FromCourse converts a model course to its response projection
func FromCourse(course *models.Course) CourseResponse {
	if course == nil {
		return CourseResponse{}
	}

	resp := CourseResponse{
		ID:    course.ID,
		Name:  course.Name,
		Seats: make([]SeatResponse, 0, len(course.Seats)),
	}
	if course.Professor != nil {
		resp.Professor = ProfessorSummary{
			ID:   course.Professor.ID,
			Name: course.Professor.Name,
		}
	} else {
		resp.Professor = ProfessorSummary{ID: course.ProfessorID}
	}
	for _, seat := range course.Seats {
		resp.Seats = append(resp.Seats, FromSeat(seat))
	}
	return resp
}

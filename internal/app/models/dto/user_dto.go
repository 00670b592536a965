package dto

import (
	"github.com/google/uuid"

	"github.com/acadsys/aulario/internal/app/models"
)

// AddressPayload carries address fields for person creation and update
type AddressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// PersonPayload is the tagged union for person creation: Type discriminates
// between STUDENT and PROFESSOR, decoded explicitly rather than through any
// inheritance machinery. Salary is only meaningful for professors.
type PersonPayload struct {
	Type    models.PersonKind `json:"type" binding:"required" example:"STUDENT"`
	Name    string            `json:"name" binding:"required"`
	Phone   string            `json:"phone"`
	Email   string            `json:"email" binding:"required,email"`
	Address *AddressPayload   `json:"address,omitempty"`
	Salary  *float64          `json:"salary,omitempty"`
}

// CreateUserRequest represents the admin "create user" input. Person must be
// present for STUDENT and PROFESSOR roles and absent for ADMIN.
type CreateUserRequest struct {
	Username string         `json:"username" binding:"required"`
	Password string         `json:"password" binding:"required"`
	Role     models.Role    `json:"role" binding:"required"`
	Person   *PersonPayload `json:"person,omitempty"`
}

// CreateUserResponse echoes the created user
type CreateUserResponse struct {
	Username string         `json:"username"`
	Role     models.Role    `json:"role"`
	Person   *PersonPayload `json:"person,omitempty"`
}

// UpdatePersonRequest carries the mutable person fields. Subtype attributes
// (student number, average, salary) are not updatable through this path.
type UpdatePersonRequest struct {
	Name    string          `json:"name" binding:"required"`
	Phone   string          `json:"phone"`
	Email   string          `json:"email" binding:"required,email"`
	Address *AddressPayload `json:"address,omitempty"`
}

// PersonResponse represents one person in listings
type PersonResponse struct {
	ID    int64             `json:"id"`
	Kind  models.PersonKind `json:"kind"`
	Name  string            `json:"name"`
	Phone string            `json:"phone,omitempty"`
	Email string            `json:"email"`
}

// PersonListResponse is the paginated person listing
type PersonListResponse struct {
	Persons    []PersonResponse `json:"persons"`
	Pagination PaginationInfo   `json:"pagination"`
}

// StudentSearchResult is the lightweight student search projection
type StudentSearchResult struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StudentNumber uuid.UUID `json:"studentNumber"`
}

// ProfessorResponse represents a professor in selection widgets
type ProfessorResponse struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Salary float64 `json:"salary"`
}

// FromPerson converts a model person to its listing projection
func FromPerson(p *models.Person) PersonResponse {
	if p == nil {
		return PersonResponse{}
	}
	return PersonResponse{
		ID:    p.ID,
		Kind:  p.Kind,
		Name:  p.Name,
		Phone: p.Phone,
		Email: p.Email,
	}
}

// FromProfessor converts a model professor to its response projection
func FromProfessor(p *models.Professor) ProfessorResponse {
	if p == nil {
		return ProfessorResponse{}
	}
	return ProfessorResponse{
		ID:     p.ID,
		Name:   p.Name,
		Email:  p.Email,
		Salary: p.Salary,
	}
}

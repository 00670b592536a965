package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/acadsys/aulario/internal/app/models/dto"
	"github.com/acadsys/aulario/internal/app/services"
	"github.com/acadsys/aulario/internal/middleware"
	"github.com/acadsys/aulario/internal/pkg/helpers"
)

// UserController handles user and person management operations
type UserController struct {
	identityService *services.IdentityService
	logger          zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(identityService *services.IdentityService, logger zerolog.Logger) *UserController {
	return &UserController{
		identityService: identityService,
		logger:          logger,
	}
}

// CreateUser handles admin user creation
// @Summary Create a user
// @Description Creates a user account together with its person. STUDENT and PROFESSOR roles require a matching person payload; ADMIN takes none.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User information"
// @Success 201 {object} dto.APIResponse{data=dto.CreateUserResponse} "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or role mismatch"
// @Failure 409 {object} dto.ErrorResponse "Username or email already exists"
// @Security BearerAuth
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.identityService.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Failed to create user")
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.CreateUserResponse{
		Username: user.Username,
		Role:     user.Role,
		Person:   req.Person,
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// GetPersons lists persons page by page
// @Summary List persons
// @Description Returns one page of persons ordered by id
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PersonListResponse} "Persons page"
// @Security BearerAuth
// @Router /users [get]
func (c *UserController) GetPersons(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	persons, pagination, err := c.identityService.GetPersonsPage(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.PersonListResponse{
		Persons:    make([]dto.PersonResponse, 0, len(persons)),
		Pagination: pagination,
	}
	for _, person := range persons {
		resp.Persons = append(resp.Persons, dto.FromPerson(person))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// UpdatePerson overwrites a person's mutable fields
// @Summary Update a person
// @Description Overwrites name, phone, email and address of a person. Subtype fields are untouched.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "Person ID"
// @Param request body dto.UpdatePersonRequest true "Person fields"
// @Success 200 {object} dto.APIResponse{data=dto.PersonResponse} "Person updated"
// @Failure 404 {object} dto.ErrorResponse "Person not found"
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Security BearerAuth
// @Router /persons/{id} [put]
func (c *UserController) UpdatePerson(ctx *gin.Context) {
	personID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid person id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.UpdatePersonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	person, err := c.identityService.UpdatePerson(ctx.Request.Context(), personID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromPerson(person),
		Timestamp: time.Now(),
	})
}

// GetProfessors lists every professor
// @Summary List professors
// @Description Returns all professors ordered by name, for selection widgets
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.ProfessorResponse} "Professors"
// @Security BearerAuth
// @Router /professors [get]
func (c *UserController) GetProfessors(ctx *gin.Context) {
	professors, err := c.identityService.GetAllProfessors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.ProfessorResponse, 0, len(professors))
	for _, professor := range professors {
		resp = append(resp, dto.FromProfessor(professor))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// SearchStudents lists the lightweight student projection
// @Summary Search students
// @Description Returns id, name and student number of every student, ordered by name
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentSearchResult} "Students"
// @Security BearerAuth
// @Router /students/search [get]
func (c *UserController) SearchStudents(ctx *gin.Context) {
	results, err := c.identityService.SearchStudents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      results,
		Timestamp: time.Now(),
	})
}

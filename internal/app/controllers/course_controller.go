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

// CourseController handles course, seat and mark operations
type CourseController struct {
	enrollmentService *services.EnrollmentService
	identityService   *services.IdentityService
	logger            zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(enrollmentService *services.EnrollmentService, identityService *services.IdentityService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		enrollmentService: enrollmentService,
		identityService:   identityService,
		logger:            logger,
	}
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// CreateCourse creates a course with its seats
// @Summary Create a course
// @Description Creates a course for a professor. Seats come either as seatsAmount empty seats or as an explicit seat list.
// @Tags courses
// @Accept json
// @Produce json
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Professor or listed student not found"
// @Security BearerAuth
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.enrollmentService.CreateCourse(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("name", req.Name).Msg("Failed to create course")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.FromCourse(course),
		Timestamp: time.Now(),
	})
}

// GetCourses lists courses page by page
// @Summary List courses
// @Description Returns one page of courses ordered by id, fully loaded
// @Tags courses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Courses page"
// @Security BearerAuth
// @Router /courses [get]
func (c *CourseController) GetCourses(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	courses, pagination, err := c.enrollmentService.GetCoursesPage(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.CourseListResponse{
		Courses:    make([]dto.CourseResponse, 0, len(courses)),
		Pagination: pagination,
	}
	for _, course := range courses {
		resp.Courses = append(resp.Courses, dto.FromCourse(course))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// GetAllCourses lists every course
// @Summary List all courses
// @Description Returns every course fully loaded, ordered by id
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses"
// @Security BearerAuth
// @Router /courses/all [get]
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	courses, err := c.enrollmentService.GetAllCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		resp = append(resp, dto.FromCourse(course))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// GetCourse returns one course
// @Summary Get a course
// @Description Returns the course with its professor and seats
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security BearerAuth
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.enrollmentService.GetCourseByID(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromCourse(course),
		Timestamp: time.Now(),
	})
}

// GetStudentsInCourse lists the students enrolled in a course
// @Summary Students in course
// @Description Returns the students holding seats in the course, fully loaded with address and seat set
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse} "Students"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security BearerAuth
// @Router /courses/{id}/students [get]
func (c *CourseController) GetStudentsInCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	students, err := c.enrollmentService.GetStudentsInCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		resp = append(resp, dto.FromStudent(student))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// AssignStudent puts a student on a free seat of the course
// @Summary Assign a student
// @Description Assigns the student to the lowest-id free seat of the course and returns the updated course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body dto.AssignStudentRequest true "Student to assign"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Updated course"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Failure 409 {object} dto.ErrorResponse "Course full or student already enrolled"
// @Security BearerAuth
// @Router /courses/{id}/students [post]
func (c *CourseController) AssignStudent(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AssignStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.enrollmentService.AssignStudentToCourse(ctx.Request.Context(), courseID, req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromCourse(course),
		Timestamp: time.Now(),
	})
}

// BulkAssignStudents merges occupied seats into the course
// @Summary Bulk seat merge
// @Description Inserts one occupied seat per entry into the course, recomputes averages of marked students and returns the updated course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body dto.BulkAssignRequest true "Seats to merge"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Updated course"
// @Failure 404 {object} dto.ErrorResponse "Course or student not found"
// @Failure 409 {object} dto.ErrorResponse "A student already holds a seat in the course"
// @Security BearerAuth
// @Router /courses/{id}/seats [post]
func (c *CourseController) BulkAssignStudents(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.BulkAssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.enrollmentService.AssignStudentsToCourse(ctx.Request.Context(), courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromCourse(course),
		Timestamp: time.Now(),
	})
}

// UnassignStudent frees the student's seat in the course
// @Summary Unassign a student
// @Description Frees the student's seat, drops its mark and recomputes the student's average
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Student unassigned"
// @Failure 400 {object} dto.ErrorResponse "Student not enrolled"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security BearerAuth
// @Router /courses/{id}/students/{studentId} [delete]
func (c *CourseController) UnassignStudent(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	if err := c.enrollmentService.UnassignStudentFromCourse(ctx.Request.Context(), courseID, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Student unassigned"},
		Timestamp: time.Now(),
	})
}

// SetMark records a mark for the student's seat
// @Summary Set a mark
// @Description Records the mark on the student's seat and recomputes the average
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Param request body dto.SetMarkRequest true "Mark"
// @Success 200 {object} dto.APIResponse{data=dto.MarkResponse} "Mark recorded"
// @Failure 400 {object} dto.ErrorResponse "Student not enrolled or mark out of range"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Security BearerAuth
// @Router /courses/{id}/students/{studentId}/mark [put]
func (c *CourseController) SetMark(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	var req dto.SetMarkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	markResponse, err := c.enrollmentService.SetMarkToStudentInCourse(ctx.Request.Context(), courseID, studentID, *req.Mark)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      markResponse,
		Timestamp: time.Now(),
	})
}

// MyCourses returns the authenticated student's enrollments
// @Summary Student's own courses
// @Description Returns the courses the authenticated student holds a seat in, with marks
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments"
// @Failure 400 {object} dto.ErrorResponse "Account is not a student"
// @Security BearerAuth
// @Router /students/me/courses [get]
func (c *CourseController) MyCourses(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.identityService.GetStudentByUserID(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enrollments, err := c.enrollmentService.GetEnrollmentsForStudent(ctx.Request.Context(), student.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		resp = append(resp, dto.EnrollmentResponse{
			CourseID:   e.CourseID,
			CourseName: e.CourseName,
			Year:       e.Year,
			Mark:       e.Mark,
		})
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// MyTaughtCourses returns the authenticated professor's courses
// @Summary Professor's own courses
// @Description Returns the courses taught by the authenticated professor, fully loaded
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses"
// @Failure 400 {object} dto.ErrorResponse "Account is not a professor"
// @Security BearerAuth
// @Router /professors/me/courses [get]
func (c *CourseController) MyTaughtCourses(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	professor, err := c.identityService.GetProfessorByUserID(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courses, err := c.enrollmentService.GetCoursesByProfessor(ctx.Request.Context(), professor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		resp = append(resp, dto.FromCourse(course))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

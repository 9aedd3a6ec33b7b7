package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/views"
)

// adminApi serves the back office: the student roster, catalog authoring,
// enrollment administration and the homework review queue.
type adminApi struct {
	catalogSvc  *catalog.Service
	enrollments *progress.Enrollments
	homeworkSvc *homework.Service
	viewsSvc    *views.Service
	validate    *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{
		catalogSvc:  opts.CatalogSvc,
		enrollments: opts.Enrollments,
		homeworkSvc: opts.HomeworkSvc,
		viewsSvc:    opts.ViewsSvc,
		validate:    opts.Validate,
	}

	ag := g.Group("/admin", jwt)

	ag.GET("/students", api.students, adminMiddleware())

	// homework review queue is open to curators as well
	hg := ag.Group("/homework", reviewerMiddleware())
	hg.GET("", api.homeworkFeed)
	hg.POST("/:id/review", api.review)

	eg := ag.Group("/enrollments", adminMiddleware())
	eg.POST("", api.enroll)
	eg.PUT("/status", api.setEnrollmentStatus)

	cg := ag.Group("/courses", adminMiddleware())
	cg.GET("", api.courses)
	cg.POST("", api.createCourse)
	cg.PUT("/:id", api.updateCourse)
	cg.POST("/:id/modules", api.addModule)
	ag.POST("/modules/:id/lessons", api.addLesson, adminMiddleware())
	ag.POST("/lessons/:id/attachments", api.addAttachment, adminMiddleware())
}

// Handlers

func (api *adminApi) students(ctx echo.Context) error {
	rows, err := api.viewsSvc.AdminStudentRows()
	if err != nil {
		return errors.Wrap(err, "querying student rows")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *adminApi) homeworkFeed(ctx echo.Context) error {
	filter := new(homework.Filter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}

	items, err := api.viewsSvc.HomeworkFeed(*filter)
	if err != nil {
		return errors.Wrap(err, "querying homework feed")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *adminApi) review(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data homework.ReviewData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, rev, err := api.homeworkSvc.Review(ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ReviewResponse{Submission: sub, Review: rev})
}

func (api *adminApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	enr, err := api.enrollments.Enroll(data.UserID, data.CourseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *adminApi) setEnrollmentStatus(ctx echo.Context) error {
	var data EnrollmentStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentStatusRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	enr, err := api.enrollments.SetStatus(data.UserID, data.CourseID, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *adminApi) courses(ctx echo.Context) error {
	courses, err := api.catalogSvc.AllCourses()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.catalogSvc); err != nil {
		return err
	}

	crs, err := api.catalogSvc.CreateCourse(claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *adminApi) updateCourse(ctx echo.Context) error {
	crs, err := api.catalogSvc.CourseByID(ctx.Param("id"))
	if err != nil {
		return err
	}

	var data catalog.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate, crs, api.catalogSvc); err != nil {
		return err
	}

	crs, err = api.catalogSvc.UpdateCourse(crs.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *adminApi) addModule(ctx echo.Context) error {
	var data catalog.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.catalogSvc.AddModule(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *adminApi) addLesson(ctx echo.Context) error {
	var data catalog.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.catalogSvc.AddLesson(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *adminApi) addAttachment(ctx echo.Context) error {
	var data catalog.NewAttachment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttachment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.catalogSvc.AddAttachment(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, att)
}

type (
	EnrollRequest struct {
		UserID   string `json:"user_id" validate:"required"`
		CourseID string `json:"course_id" validate:"required"`
	}

	EnrollmentStatusRequest struct {
		UserID   string `json:"user_id" validate:"required"`
		CourseID string `json:"course_id" validate:"required"`
		Status   string `json:"status" validate:"required"`
	}

	ReviewResponse struct {
		Submission homework.Submission `json:"submission"`
		Review     homework.Review     `json:"review"`
	}
)

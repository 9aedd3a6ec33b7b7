package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/laurahq/lms/core/homework"
	"github.com/laurahq/lms/core/progress"
	"github.com/laurahq/lms/core/views"
)

// studentApi serves the student portal: course cards, the course program with
// per-lesson state, playback tracking, lesson completion and homework.
type studentApi struct {
	tracker     *progress.Tracker
	homeworkSvc *homework.Service
	viewsSvc    *views.Service
	validate    *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		tracker:     opts.Tracker,
		homeworkSvc: opts.HomeworkSvc,
		viewsSvc:    opts.ViewsSvc,
		validate:    opts.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.courseCards)
	cg.GET("/:id/tree", api.courseTree)
	cg.GET("/:id/progress", api.courseProgress)

	lg := g.Group("/lessons", jwt)
	lg.GET("/:id", api.lessonDetail)
	lg.PUT("/:id/position", api.recordPosition)
	lg.POST("/:id/complete", api.completeLesson)
	lg.POST("/:id/homework", api.submitHomework)

	g.GET("/homework", api.myHomework, jwt)
}

// Handlers

func (api *studentApi) courseCards(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cards, err := api.viewsSvc.CourseCardsFor(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying course cards")
	}
	return ctx.JSON(http.StatusOK, cards)
}

func (api *studentApi) courseTree(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tree, err := api.viewsSvc.CourseTreeFor(ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *studentApi) courseProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cp, err := api.tracker.CourseProgressFor(claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

func (api *studentApi) lessonDetail(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	detail, err := api.viewsSvc.LessonDetailFor(ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *studentApi) recordPosition(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data PlaybackPositionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PlaybackPositionRequest")
	}

	lp, err := api.tracker.RecordPlaybackPosition(claims.Subject, ctx.Param("id"), data.PositionSec)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lp)
}

func (api *studentApi) completeLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cp, err := api.tracker.MarkLessonCompleted(claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

func (api *studentApi) submitHomework(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data homework.SubmitData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.homeworkSvc.Submit(claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *studentApi) myHomework(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := homework.Filter{UserID: claims.Subject, Status: ctx.QueryParam("status")}
	items, err := api.viewsSvc.HomeworkFeed(filter)
	if err != nil {
		return errors.Wrap(err, "querying homework feed")
	}
	return ctx.JSON(http.StatusOK, items)
}

type PlaybackPositionRequest struct {
	PositionSec int `json:"position_sec"`
}

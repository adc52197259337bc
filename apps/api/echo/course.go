package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teachershub/backend/core"
	"github.com/teachershub/backend/core/course"
)

var (
	errCourseDetailsMissing = errors.New("course details not provided")
	errCourseIDNotInt       = errors.New("The course id should be an integer!")
	errModuleDetailsMissing = errors.New("no data added")
)

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, validate *validator.Validate) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	// un-authed endpoints
	g.GET("/courses", api.list)
	g.GET("/courses/:id", api.retrieve)
	g.GET("/courses/:id/modules", api.listModules)

	// authed endpoints
	ag := g.Group("/courses", jwt)
	ag.POST("", api.create, adminRequiredMiddleware())
	ag.PUT("/:id", api.update, adminRequiredMiddleware())
	ag.DELETE("/:id", api.destroy, adminRequiredMiddleware())
	ag.POST("/:id/modules", api.addModule, adminRequiredMiddleware())
	ag.POST("/:id/enroll", api.enroll)
}

// courseIDParam parses the :id path param; a non-integer id is rejected
// before any store access.
func courseIDParam(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, core.NewValidationError(errCourseIDNotInt)
	}
	return id, nil
}

// trapDomainErr converts course sentinel errors to user-facing validation
// errors; anything else bubbles up as a server error.
func trapDomainErr(err error, msg string) error {
	switch cause := errors.Cause(err); cause {
	case course.ErrNotFound, course.ErrNameExists, course.ErrAlreadyEnrolled:
		return core.NewValidationError(cause)
	default:
		return errors.Wrap(err, msg)
	}
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errCourseDetailsMissing)
	}

	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		return err
	}

	crs, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return trapDomainErr(err, "creating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := courseIDParam(ctx)
	if err != nil {
		return err
	}

	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return trapDomainErr(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) list(ctx echo.Context) error {
	// an empty catalogue is a normal 200 response, not an error
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := courseIDParam(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	orig, err := api.svc.GetByID(reqCtx, id)
	if err != nil {
		return trapDomainErr(err, "finding course")
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return core.NewValidationError(errCourseDetailsMissing)
	}
	if err = data.Validate(reqCtx, orig, api.validate, api.svc); err != nil {
		return err
	}

	crs, err := api.svc.Update(reqCtx, id, data)
	if err != nil {
		return trapDomainErr(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := courseIDParam(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return trapDomainErr(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Course deleted!"})
}

func (api *courseApi) enroll(ctx echo.Context) error {
	id, err := courseIDParam(ctx)
	if err != nil {
		return err
	}

	idn, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	if _, err = api.svc.Enroll(ctx.Request().Context(), idn.Username, id); err != nil {
		return trapDomainErr(err, "enrolling")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "successfully enrolled"})
}

func (api *courseApi) addModule(ctx echo.Context) error {
	id, err := courseIDParam(ctx)
	if err != nil {
		return err
	}

	var data course.NewModule
	if err = ctx.Bind(&data); err != nil {
		return core.NewValidationError(errModuleDetailsMissing)
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.AddModule(ctx.Request().Context(), id, data)
	if err != nil {
		return trapDomainErr(err, "adding course module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *courseApi) listModules(ctx echo.Context) error {
	id, err := courseIDParam(ctx)
	if err != nil {
		return err
	}

	modules, err := api.svc.QueryModules(ctx.Request().Context(), id)
	if err != nil {
		return trapDomainErr(err, "querying course modules")
	}
	if modules == nil {
		modules = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, modules)
}

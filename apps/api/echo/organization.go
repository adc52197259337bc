package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teachershub/backend/core/organization"
)

type organizationApi struct {
	svc      organization.Service
	validate *validator.Validate
}

func registerOrganizationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc organization.Service, validate *validator.Validate) {
	api := organizationApi{
		svc:      svc,
		validate: validate,
	}

	g.GET("/organizations", api.list)

	ag := g.Group("/organizations", jwt)
	ag.POST("", api.create, adminRequiredMiddleware())
}

// Handlers

func (api *organizationApi) create(ctx echo.Context) error {
	var data organization.NewOrganization
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOrganization")
	}

	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		return err
	}

	org, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating organization")
	}
	return ctx.JSON(http.StatusCreated, org)
}

func (api *organizationApi) list(ctx echo.Context) error {
	orgs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying organizations")
	}
	if orgs == nil {
		orgs = []organization.Organization{}
	}
	return ctx.JSON(http.StatusOK, orgs)
}

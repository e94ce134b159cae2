package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/violation"
)

type violationApi struct {
	svc      *violation.Service
	validate *validator.Validate
}

func registerViolationAPI(e *echo.Echo, svc *violation.Service, validate *validator.Validate) {
	api := violationApi{svc: svc, validate: validate}

	e.POST("/logViolation", api.logOne)
	e.POST("/logMultipleViolations", api.logMultiple)
	e.POST("/getViolationsSummary", api.summary)
}

// Handlers

func (api *violationApi) logOne(ctx echo.Context) error {
	return api.log(ctx, false)
}

func (api *violationApi) logMultiple(ctx echo.Context) error {
	return api.log(ctx, true)
}

func (api *violationApi) log(ctx echo.Context, perViolation bool) error {
	var data violation.NewViolations
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewViolations")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Log(ctx.Request().Context(), data, perViolation); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Violations logged successfully"})
}

func (api *violationApi) summary(ctx echo.Context) error {
	var data studentNumberRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to studentNumberRequest")
	}
	if core.CleanString(data.StudentNumber) == "" {
		return core.NewValidationError(errors.New("Student number is required"))
	}

	summary, err := api.svc.Summary(ctx.Request().Context(), data.StudentNumber)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "violations": summary})
}

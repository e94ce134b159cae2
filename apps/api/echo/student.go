package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
)

type (
	studentApi struct {
		svc      *student.Service
		validate *validator.Validate
	}

	studentNumberRequest struct {
		StudentNumber string `json:"studentNumber"`
	}
)

func registerStudentAPI(e *echo.Echo, svc *student.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	e.GET("/search", api.search)
	e.POST("/getStudentInfo", api.info)
	e.POST("/createStudentFolder", api.create)
	e.POST("/validateMainBarcode", api.validateBarcode)
}

// Handlers

func (api *studentApi) search(ctx echo.Context) error {
	sn := core.CleanString(ctx.QueryParam("studentNumber"))
	if sn == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "Student number is required"})
	}

	st, err := api.svc.Get(ctx.Request().Context(), sn)
	if err != nil {
		if core.IsNotFound(err) {
			return ctx.JSON(http.StatusOK, echo.Map{"error": "Student not found"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"fullName": st.FullName})
}

func (api *studentApi) info(ctx echo.Context) error {
	var data studentNumberRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to studentNumberRequest")
	}

	info, err := api.svc.Info(ctx.Request().Context(), data.StudentNumber)
	if err != nil {
		if core.IsNotFound(err) {
			return ctx.JSON(http.StatusOK, response{Message: "Student not found"})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "studentInfo": info})
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.Enroll(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.String(http.StatusOK, "Folder and file created successfully for "+st.StudentNumber+".")
}

func (api *studentApi) validateBarcode(ctx echo.Context) error {
	var data studentNumberRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to studentNumberRequest")
	}
	return ctx.JSON(http.StatusOK, response{Success: data.StudentNumber != ""})
}

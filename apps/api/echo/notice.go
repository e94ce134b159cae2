package echoapi

import (
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core/notice"
)

type noticeApi struct {
	svc      *notice.Service
	validate *validator.Validate
}

func registerNoticeAPI(g *echo.Group, svc *notice.Service, validate *validator.Validate) {
	api := noticeApi{svc: svc, validate: validate}

	g.POST("/submitNotice", api.submit)
	g.GET("/notices", api.list)
	g.PUT("/editNotice/:fileName", api.edit)
	g.DELETE("/removeNotice/:fileName", api.remove)
}

// fileName reads the (possibly escaped) notice name from the path.
func fileName(ctx echo.Context) string {
	name := ctx.Param("fileName")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// Handlers

func (api *noticeApi) submit(ctx echo.Context) error {
	var data notice.NewNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Submit(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Notice submitted successfully"})
}

func (api *noticeApi) list(ctx echo.Context) error {
	notices, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "notices": notices})
}

func (api *noticeApi) edit(ctx echo.Context) error {
	var data notice.EditNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditNotice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Edit(ctx.Request().Context(), fileName(ctx), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Notice updated successfully"})
}

func (api *noticeApi) remove(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), fileName(ctx)); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Notice removed successfully"})
}

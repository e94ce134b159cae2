package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core/kiosk"
)

type (
	kioskApi struct {
		svc *kiosk.Service
	}

	tokenRequest struct {
		Token string `json:"token"`
	}

	tokenResponse struct {
		Valid bool `json:"valid"`
	}
)

func registerKioskAPI(e *echo.Echo, svc *kiosk.Service) {
	api := kioskApi{svc: svc}

	e.POST("/validate-token", api.validateToken)
}

func (api *kioskApi) validateToken(ctx echo.Context) error {
	var data tokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to tokenRequest")
	}
	if !kiosk.WellFormed(data.Token) {
		return ctx.JSON(http.StatusBadRequest, tokenResponse{})
	}

	valid, err := api.svc.ValidateToken(ctx.Request().Context(), data.Token)
	if err != nil {
		ctx.Logger().Error(err)
		return ctx.JSON(http.StatusInternalServerError, tokenResponse{})
	}
	return ctx.JSON(http.StatusOK, tokenResponse{Valid: valid})
}

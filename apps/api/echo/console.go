package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
)

type (
	consoleApi struct {
		logger core.Logger
	}

	consoleRequest struct {
		Log string `json:"log"`
	}
)

func registerConsoleAPI(e *echo.Echo, logger core.Logger) {
	api := consoleApi{logger: logger}

	e.POST("/logClientConsole", api.log)
}

// log relays a kiosk browser console line to the server log.
func (api *consoleApi) log(ctx echo.Context) error {
	var data consoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to consoleRequest")
	}
	if strings.TrimSpace(data.Log) == "" {
		return ctx.String(http.StatusBadRequest, "No log provided")
	}

	api.logger.Info("Client Console Log: " + data.Log)
	return ctx.String(http.StatusOK, "Log received")
}

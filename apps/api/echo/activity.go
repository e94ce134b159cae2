package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/activity"
)

const msgCooldown = "Cooldown period not met. Scan ignored."

// truthy decodes any JSON value the way the kiosk page tests it: null, false, "" and 0 are false.
type truthy bool

func (t *truthy) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "null", "false", `""`, "0":
		*t = false
	default:
		*t = true
	}
	return nil
}

type (
	activityApi struct {
		svc      *activity.Service
		metrics  *metrics
		validate *validator.Validate
	}

	scanRequest struct {
		StudentNumber string `json:"studentNumber" validate:"required,notblank"`
		Violations    truthy `json:"violations"`
	}

	scanResponse struct {
		Success  bool   `json:"success"`
		FullName string `json:"fullName"`
		Message  string `json:"message"`
		IsExit   bool   `json:"isExit"`
		Skipped  bool   `json:"skipped,omitempty"`
	}

	recordsRequest struct {
		StudentNumber string `json:"studentNumber" validate:"required,notblank"`
		Date          string `json:"date" validate:"required,isodate"`
	}

	lateTimesResponse struct {
		Success   bool   `json:"success"`
		Message   string `json:"message,omitempty"`
		StartTime string `json:"startTime"`
		LateTime  string `json:"lateTime"`
	}

	setLateTimesRequest struct {
		NewStartTime string `json:"newStartTime"`
		NewLateTime  string `json:"newLateTime"`
	}
)

func (r *scanRequest) validate(validate *validator.Validate) error {
	r.StudentNumber = core.CleanString(r.StudentNumber)
	return validate.Struct(r)
}

func (r *recordsRequest) validate(validate *validator.Validate) error {
	r.StudentNumber = core.CleanString(r.StudentNumber)
	r.Date = core.CleanString(r.Date)
	return validate.Struct(r)
}

func registerActivityAPI(e *echo.Echo, svc *activity.Service, m *metrics, validate *validator.Validate) {
	api := activityApi{svc: svc, metrics: m, validate: validate}

	e.POST("/logActivity", api.logActivity)
	e.POST("/logEntrance", api.logEntrance)
	e.POST("/getStudentRecords", api.records)
	e.POST("/setLateTimes", api.setLateTimes)
	e.GET("/getLateTimes", api.getLateTimes)
}

// Handlers

func (api *activityApi) logActivity(ctx echo.Context) error {
	var data scanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to scanRequest")
	}
	data.Violations = false
	return api.scan(ctx, data)
}

func (api *activityApi) logEntrance(ctx echo.Context) error {
	var data scanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to scanRequest")
	}
	return api.scan(ctx, data)
}

func (api *activityApi) scan(ctx echo.Context, data scanRequest) error {
	if err := data.validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Log(ctx.Request().Context(), data.StudentNumber, bool(data.Violations))
	if err != nil {
		if !core.IsNotFound(err) {
			api.metrics.scans.WithLabelValues(scanFailed, "").Inc()
		}
		return err
	}

	resp := scanResponse{
		Success:  true,
		FullName: res.Student.FullName,
		IsExit:   res.IsExit,
	}
	if res.Skipped {
		api.metrics.scans.WithLabelValues(scanSkipped, "").Inc()
		resp.Message = msgCooldown
		resp.Skipped = true
		return ctx.JSON(http.StatusOK, resp)
	}

	api.metrics.scans.WithLabelValues(scanLogged, string(res.Kind)).Inc()
	if res.Late {
		api.metrics.lateEntries.Inc()
	}
	resp.Message = res.Label + " logged successfully."
	if data.Violations {
		resp.Message += " Violations recorded."
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *activityApi) records(ctx echo.Context) error {
	var data recordsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to recordsRequest")
	}
	if err := data.validate(api.validate); err != nil {
		return err
	}

	records, err := api.svc.Records(ctx.Request().Context(), data.StudentNumber, data.Date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "records": records})
}

func (api *activityApi) setLateTimes(ctx echo.Context) error {
	var data setLateTimesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to setLateTimesRequest")
	}

	w := activity.Window{
		StartTime: core.CleanString(data.NewStartTime),
		LateTime:  core.CleanString(data.NewLateTime),
	}
	if w.StartTime == "" || w.LateTime == "" {
		return core.NewValidationError(errors.New("Both start time and late time are required."))
	}
	if err := api.svc.SetWindow(w); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, lateTimesResponse{
		Success:   true,
		Message:   "Late times updated successfully.",
		StartTime: w.StartTime,
		LateTime:  w.LateTime,
	})
}

func (api *activityApi) getLateTimes(ctx echo.Context) error {
	w := api.svc.Window()
	return ctx.JSON(http.StatusOK, lateTimesResponse{Success: true, StartTime: w.StartTime, LateTime: w.LateTime})
}

package echoapi

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// pages maps a kiosk or admin route to its HTML file under the web root.
var pages = map[string]string{
	"/entrance":        "index.html",
	"/home":            "index.html",
	"/settings":        "Admin/settings.html",
	"/dashboard":       "Admin/dashboard.html",
	"/notice":          "Admin/notice.html",
	"/manualviolation": "Admin/manualviolation.html",
	"/UserCreate":      "Admin/UserCreate.html",
	"/studentsearch":   "Admin/studentsearch.html",
	"/searchdate":      "Admin/searchdate.html",
	"/usernotice":      "Admin/usernotice.html",
	"/active":          "Admin/active.html",
	"/login":           "Admin/AdminUser/login.html",
}

func registerPages(e *echo.Echo, root string) {
	e.GET("/", func(ctx echo.Context) error {
		return ctx.Redirect(http.StatusFound, "/entrance")
	})
	for path, file := range pages {
		e.File(path, filepath.Join(root, file))
	}
	e.Static("/", root)
}

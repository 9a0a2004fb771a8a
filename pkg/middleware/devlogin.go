package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	DevCookie     = "WAIRA_UID"
	DevDefaultUID = "dev-agricultor"
)

// DevLogin trusts whatever uid the client names: the dev cookie, a ?uid=
// query or the default farmer. Local use only.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := ""
			if ck, err := c.Cookie(DevCookie); err == nil {
				uid = ck.Value
			}
			if uid == "" {
				if q := c.QueryParam("uid"); q != "" {
					uid = q
				} else {
					uid = DevDefaultUID
				}
				c.SetCookie(&http.Cookie{Name: DevCookie, Value: uid, Path: "/"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

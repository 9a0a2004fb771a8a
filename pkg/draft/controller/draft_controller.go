package controller

import "github.com/labstack/echo/v4"

type DraftController interface {
	Open(c echo.Context) error
	Get(c echo.Context) error
	Patch(c echo.Context) error
	Next(c echo.Context) error
	Prev(c echo.Context) error
	AddItem(c echo.Context) error
	RemoveItem(c echo.Context) error
}

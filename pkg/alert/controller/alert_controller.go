package controller

import "github.com/labstack/echo/v4"

type AlertController interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	IngestURL(c echo.Context) error
}

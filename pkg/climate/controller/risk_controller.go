package controller

import "github.com/labstack/echo/v4"

type RiskController interface {
	Evaluate(c echo.Context) error
}

package controller

import "github.com/labstack/echo/v4"

type FarmController interface {
	Load(c echo.Context) error
	Init(c echo.Context) error
	Stats(c echo.Context) error
	Export(c echo.Context) error
	ListCells(c echo.Context) error
	CellAt(c echo.Context) error
	GetCell(c echo.Context) error
	UpdateCell(c echo.Context) error
	DeleteCell(c echo.Context) error
}

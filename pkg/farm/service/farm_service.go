package service

import (
	"context"
	"errors"

	"waira/entities"
	"waira/pkg/farm/grid"
)

var (
	ErrCellNotFound         = errors.New("farm: cell not found")
	ErrReservedCell         = errors.New("farm: the owner cell cannot hold a farm element")
	ErrConfirmationRequired = errors.New("farm: clearing a cell must be confirmed")
)

type FarmService interface {
	// InitializeGrid writes rows*cols empty cells for owner, one at a time.
	// It does not look for an existing grid.
	InitializeGrid(ctx context.Context, owner string, rows, cols int) ([]entities.Cell, error)
	// LoadFarm returns the owner's grid, creating one on first use.
	LoadFarm(ctx context.Context, owner string) (*grid.Grid, error)
	UpdateCell(ctx context.Context, owner, cellID string, e entities.Entity) (entities.Cell, error)
	ClearCell(ctx context.Context, owner, cellID string, confirmed bool) (entities.Cell, error)
	Stats(ctx context.Context, owner string) (grid.Stats, error)
	CellsByType(ctx context.Context, owner string, t entities.CellType) ([]entities.Cell, error)
	CellAt(ctx context.Context, owner string, row, col int) (entities.Cell, error)
	Cell(ctx context.Context, owner, cellID string) (entities.Cell, error)
	Layout() grid.Layout
}

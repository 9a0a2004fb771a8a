package repository

import (
	"context"
	"errors"

	"waira/entities"
)

var ErrNotFound = errors.New("cell not found")

type CellRepository interface {
	Create(ctx context.Context, cell entities.Cell) (entities.Cell, error)
	FindByID(ctx context.Context, id string) (entities.Cell, error)
	FindByOwner(ctx context.Context, owner string) ([]entities.Cell, error)
	FindByOwnerAndType(ctx context.Context, owner string, t entities.CellType) ([]entities.Cell, error)
	// FindByPosition returns the first cell stored at (row, col).
	FindByPosition(ctx context.Context, owner string, row, col int) (entities.Cell, error)
	// UpdateContent rewrites tipo, subtipo and datos and nothing else.
	UpdateContent(ctx context.Context, cell entities.Cell) error
	Delete(ctx context.Context, id string) error
}

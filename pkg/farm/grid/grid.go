package grid

import (
	"sort"

	"waira/entities"
)

const (
	DefaultRows = 5
	DefaultCols = 5

	// The farm owner's profile sits in the top row, middle column.
	DefaultOwnerRow = 0
	DefaultOwnerCol = 2
)

// Layout fixes the grid dimensions and the reserved owner cell.
type Layout struct {
	Rows     int
	Cols     int
	OwnerRow int
	OwnerCol int
}

func DefaultLayout() Layout {
	return Layout{Rows: DefaultRows, Cols: DefaultCols, OwnerRow: DefaultOwnerRow, OwnerCol: DefaultOwnerCol}
}

func (l Layout) Total() int { return l.Rows * l.Cols }

func (l Layout) IsOwnerCell(row, col int) bool { return row == l.OwnerRow && col == l.OwnerCol }

func (l Layout) Contains(row, col int) bool {
	return row >= 0 && row < l.Rows && col >= 0 && col < l.Cols
}

// NewEmpty returns rows*cols empty cells for owner, outer loop on rows.
// IDs are left for the store to assign.
func NewEmpty(owner string, rows, cols int) []entities.Cell {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([]entities.Cell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, entities.Cell{Type: entities.CellEmpty, Row: r, Column: c, Owner: owner})
		}
	}
	return out
}

// Grid is an owner's cells in row-major order. Duplicate positions are kept
// as loaded; lookups by position return the first one.
type Grid struct {
	Layout Layout
	cells  []entities.Cell
}

func New(layout Layout, cells []entities.Cell) *Grid {
	cp := make([]entities.Cell, len(cells))
	copy(cp, cells)
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].Row != cp[j].Row {
			return cp[i].Row < cp[j].Row
		}
		return cp[i].Column < cp[j].Column
	})
	return &Grid{Layout: layout, cells: cp}
}

// Cells returns a copy of the cell list.
func (g *Grid) Cells() []entities.Cell {
	out := make([]entities.Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

func (g *Grid) Len() int { return len(g.cells) }

func (g *Grid) ByID(id string) (entities.Cell, bool) {
	for _, c := range g.cells {
		if c.ID == id {
			return c, true
		}
	}
	return entities.Cell{}, false
}

func (g *Grid) At(row, col int) (entities.Cell, bool) {
	for _, c := range g.cells {
		if c.Row == row && c.Column == col {
			return c, true
		}
	}
	return entities.Cell{}, false
}

// Replace swaps the cell with the same id. It reports false when the id is
// not part of the grid.
func (g *Grid) Replace(cell entities.Cell) bool {
	for i := range g.cells {
		if g.cells[i].ID == cell.ID {
			g.cells[i] = cell
			return true
		}
	}
	return false
}

// Rows groups the cells by row for rendering. Missing positions come back
// as empty placeholder cells without an id.
func (g *Grid) Rows() [][]entities.Cell {
	out := make([][]entities.Cell, g.Layout.Rows)
	for r := 0; r < g.Layout.Rows; r++ {
		out[r] = make([]entities.Cell, g.Layout.Cols)
		for c := 0; c < g.Layout.Cols; c++ {
			if cell, ok := g.At(r, c); ok {
				out[r][c] = cell
				continue
			}
			out[r][c] = entities.Cell{Type: entities.CellEmpty, Row: r, Column: c}
		}
	}
	return out
}

func (g *Grid) Stats() Stats { return Compute(g.cells, g.Layout.Total()) }

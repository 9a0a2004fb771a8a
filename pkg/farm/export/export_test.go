package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"waira/entities"
	"waira/pkg/farm/grid"
)

func sampleGrid() *grid.Grid {
	cells := grid.NewEmpty("u1", 5, 5)
	for i := range cells {
		cells[i].ID = entities.PositionKey(cells[i].Row, cells[i].Column)
	}
	cells[6].Assign(entities.Crop{Name: "Quinua roja", Type: "quinua", Area: 1.5})
	cells[7].Assign(entities.Worker{Name: "Rosa", Surname: "Quispe", Role: "agricultor"})
	return grid.New(grid.DefaultLayout(), cells)
}

func TestLabel(t *testing.T) {
	g := sampleGrid()
	l := g.Layout

	owner, _ := g.At(0, 2)
	assert.Equal(t, "Mi perfil", Label(l, owner))

	crop, _ := g.At(1, 1)
	assert.Equal(t, "Cultivo: Quinua roja", Label(l, crop))

	worker, _ := g.At(1, 2)
	assert.Equal(t, "Trabajador: Rosa Quispe", Label(l, worker))

	empty, _ := g.At(4, 4)
	assert.Equal(t, "", Label(l, empty))

	broken := entities.Cell{Type: entities.CellReservoir, Row: 3, Column: 3, Raw: []byte(`"x"`)}
	assert.Equal(t, "Reservorio", Label(l, broken))
}

func TestWriteProducesBothSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleGrid()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{GridSheet, StatsSheet}, f.GetSheetList())

	v, err := f.GetCellValue(GridSheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Mi perfil", v)

	v, err = f.GetCellValue(GridSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Cultivo: Quinua roja", v)

	v, err = f.GetCellValue(StatsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = f.GetCellValue(StatsSheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, "2", v, "occupied cells")

	v, err = f.GetCellValue(StatsSheet, "B11")
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)
}

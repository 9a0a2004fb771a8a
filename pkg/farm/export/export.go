package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"waira/entities"
	"waira/pkg/farm/grid"
)

const (
	GridSheet  = "Granja"
	StatsSheet = "Estadisticas"
)

var kindLabels = map[entities.CellType]string{
	entities.CellCrop:      "Cultivo",
	entities.CellSupplier:  "Proveedor",
	entities.CellCustomer:  "Cliente",
	entities.CellWorker:    "Trabajador",
	entities.CellWarehouse: "Almacén",
	entities.CellReservoir: "Reservorio",
}

// Workbook lays the grid out one cell per spreadsheet cell, plus a sheet of
// aggregate figures.
func Workbook(g *grid.Grid) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", GridSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(StatsSheet); err != nil {
		return nil, err
	}
	if err := writeGrid(f, g); err != nil {
		return nil, fmt.Errorf("grid sheet: %w", err)
	}
	if err := writeStats(f, g.Stats()); err != nil {
		return nil, fmt.Errorf("stats sheet: %w", err)
	}
	return f, nil
}

// Write streams the workbook as xlsx.
func Write(w io.Writer, g *grid.Grid) error {
	f, err := Workbook(g)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeGrid(f *excelize.File, g *grid.Grid) error {
	for r, row := range g.Rows() {
		for c, cell := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(GridSheet, name, Label(g.Layout, cell)); err != nil {
				return err
			}
		}
	}
	if g.Layout.Cols > 0 {
		last, _ := excelize.ColumnNumberToName(g.Layout.Cols)
		return f.SetColWidth(GridSheet, "A", last, 28)
	}
	return nil
}

// Label is the text shown for a cell: "Mi perfil" on the owner cell,
// "<Kind>: <name>" on populated ones, blank otherwise.
func Label(l grid.Layout, cell entities.Cell) string {
	if l.IsOwnerCell(cell.Row, cell.Column) {
		return "Mi perfil"
	}
	if cell.Empty() {
		return ""
	}
	kind := kindLabels[cell.Type]
	if kind == "" {
		kind = string(cell.Type)
	}
	if n := displayName(cell.Entity); n != "" {
		return kind + ": " + n
	}
	return kind
}

func displayName(e entities.Entity) string {
	switch v := e.(type) {
	case entities.Crop:
		return v.Name
	case entities.Supplier:
		return v.Name
	case entities.Customer:
		return v.Name
	case entities.Worker:
		if v.Surname != "" {
			return v.Name + " " + v.Surname
		}
		return v.Name
	case entities.Warehouse:
		return v.Name
	case entities.Reservoir:
		return v.Name
	}
	return ""
}

func writeStats(f *excelize.File, st grid.Stats) error {
	rows := [][]any{
		{"Indicador", "Valor"},
		{"Cultivos", st.Crops},
		{"Proveedores", st.Suppliers},
		{"Clientes", st.Customers},
		{"Trabajadores", st.Workers},
		{"Almacenes", st.Warehouses},
		{"Reservorios", st.Reservoirs},
		{"Celdas ocupadas", st.Occupied},
		{"Celdas vacías", st.Empty},
		{"Ocupación (%)", st.OccupancyPct},
		{"Área cultivada (ha)", st.CultivatedArea},
		{"Volumen de compra (kg)", st.PurchaseVolume},
		{"Capacidad de almacenamiento", st.StorageCapacity},
		{"Capacidad de agua (L)", st.WaterCapacity},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(StatsSheet, cell, &r); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(StatsSheet, "A1", "B1", bold); err != nil {
		return err
	}
	return f.SetColWidth(StatsSheet, "A", "A", 32)
}

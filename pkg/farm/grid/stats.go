package grid

import (
	"encoding/json"
	"math"

	"waira/entities"
)

type Stats struct {
	Crops      int `json:"cultivos"`
	Suppliers  int `json:"proveedores"`
	Customers  int `json:"clientes"`
	Workers    int `json:"trabajadores"`
	Warehouses int `json:"almacenes"`
	Reservoirs int `json:"reservorios"`

	Occupied     int `json:"ocupadas"`
	Empty        int `json:"vacias"`
	OccupancyPct int `json:"porcentajeOcupacion"`

	CultivatedArea  float64 `json:"areaTotalCultivada"`
	PurchaseVolume  float64 `json:"volumenTotalCompra"`
	StorageCapacity float64 `json:"capacidadTotalAlmacenamiento"`
	WaterCapacity   float64 `json:"capacidadTotalAgua"`
}

// Compute aggregates a cell list against the nominal grid size. Cells whose
// payload is missing count toward their kind but add nothing to the sums. A
// payload that did not decode as a whole still contributes the summed
// figures it carries.
func Compute(cells []entities.Cell, totalCells int) Stats {
	var s Stats
	for _, c := range cells {
		if c.Entity == nil && len(c.Raw) > 0 {
			s.addRaw(c.Type, c.Raw)
			continue
		}
		switch c.Type {
		case entities.CellEmpty:
			s.Empty++
		case entities.CellCrop:
			s.Crops++
			if v, ok := c.Entity.(entities.Crop); ok {
				s.CultivatedArea += finite(v.Area)
			}
		case entities.CellSupplier:
			s.Suppliers++
		case entities.CellCustomer:
			s.Customers++
			if v, ok := c.Entity.(entities.Customer); ok {
				s.PurchaseVolume += finite(v.PurchaseVolumeKg())
			}
		case entities.CellWorker:
			s.Workers++
		case entities.CellWarehouse:
			s.Warehouses++
			if v, ok := c.Entity.(entities.Warehouse); ok {
				s.StorageCapacity += finite(v.TotalCapacity)
			}
		case entities.CellReservoir:
			s.Reservoirs++
			if v, ok := c.Entity.(entities.Reservoir); ok {
				s.WaterCapacity += finite(v.Capacity)
			}
		}
	}
	s.Occupied = totalCells - s.Empty
	if totalCells > 0 {
		s.OccupancyPct = int(math.Round(float64(s.Occupied) / float64(totalCells) * 100))
	}
	return s
}

// rawFigures holds the only fields the sums read. Each one decodes on its
// own, so an unrelated bad field elsewhere in the payload does not hide it.
type rawFigures struct {
	Area      *float64 `json:"area"`
	Purchases []struct {
		Kg *float64 `json:"cantidad_kg"`
	} `json:"productos_compra"`
	TotalCapacity *float64 `json:"capacidad_total"`
	Capacity      *float64 `json:"capacidad"`
}

func (s *Stats) addRaw(kind entities.CellType, raw json.RawMessage) {
	var f rawFigures
	// type mismatches leave the field nil and decoding carries on
	_ = json.Unmarshal(raw, &f)
	switch kind {
	case entities.CellCrop:
		s.Crops++
		s.CultivatedArea += deref(f.Area)
	case entities.CellSupplier:
		s.Suppliers++
	case entities.CellCustomer:
		s.Customers++
		for _, p := range f.Purchases {
			s.PurchaseVolume += deref(p.Kg)
		}
	case entities.CellWorker:
		s.Workers++
	case entities.CellWarehouse:
		s.Warehouses++
		s.StorageCapacity += deref(f.TotalCapacity)
	case entities.CellReservoir:
		s.Reservoirs++
		s.WaterCapacity += deref(f.Capacity)
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return finite(*v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

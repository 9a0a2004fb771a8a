package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

type CellType string

const (
	CellCrop      CellType = "cultivo"
	CellSupplier  CellType = "proveedor"
	CellCustomer  CellType = "cliente"
	CellWorker    CellType = "trabajador"
	CellWarehouse CellType = "almacen"
	CellReservoir CellType = "reservorio"
	CellEmpty     CellType = "vacio"
)

// CellKinds lists the populated kinds in display order.
var CellKinds = []CellType{CellCrop, CellSupplier, CellCustomer, CellWorker, CellWarehouse, CellReservoir}

func (t CellType) Valid() bool {
	if t == CellEmpty {
		return true
	}
	for _, k := range CellKinds {
		if k == t {
			return true
		}
	}
	return false
}

// Cell is one square of a farm grid. Entity is nil for empty cells and for
// cells whose stored payload no longer decodes; in the latter case Raw keeps
// the stored bytes untouched.
type Cell struct {
	ID        string
	Type      CellType
	Subtype   string
	Row       int
	Column    int
	Entity    Entity
	Raw       json.RawMessage
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func PositionKey(row, col int) string { return fmt.Sprintf("%d-%d", row, col) }

func (c Cell) Key() string { return PositionKey(c.Row, c.Column) }

func (c Cell) Empty() bool { return c.Type == CellEmpty }

// Assign populates the cell; tipo and subtipo always follow the entity.
func (c *Cell) Assign(e Entity) {
	if e == nil {
		c.Clear()
		return
	}
	c.Type = e.Kind()
	c.Subtype = e.Subtype()
	c.Entity = e
	c.Raw = nil
}

func (c *Cell) Clear() {
	c.Type = CellEmpty
	c.Subtype = ""
	c.Entity = nil
	c.Raw = nil
}

// Payload returns the datos value to persist: the entity, the untouched raw
// bytes, or nil.
func (c Cell) Payload() any {
	if c.Entity != nil {
		return c.Entity
	}
	if len(c.Raw) > 0 {
		return c.Raw
	}
	return nil
}

type cellJSON struct {
	ID        string          `json:"id"`
	Type      CellType        `json:"tipo"`
	Subtype   string          `json:"subtipo,omitempty"`
	Row       int             `json:"fila"`
	Column    int             `json:"columna"`
	Data      json.RawMessage `json:"datos,omitempty"`
	Owner     string          `json:"propietario"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{ID: c.ID, Type: c.Type, Subtype: c.Subtype, Row: c.Row, Column: c.Column, Owner: c.Owner}
	if p := c.Payload(); p != nil {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		out.Data = b
	}
	if !c.CreatedAt.IsZero() {
		out.CreatedAt = &c.CreatedAt
	}
	if !c.UpdatedAt.IsZero() {
		out.UpdatedAt = &c.UpdatedAt
	}
	return json.Marshal(out)
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var in cellJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*c = Cell{ID: in.ID, Type: in.Type, Subtype: in.Subtype, Row: in.Row, Column: in.Column, Owner: in.Owner}
	if c.Type == "" {
		c.Type = CellEmpty
	}
	if in.CreatedAt != nil {
		c.CreatedAt = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		c.UpdatedAt = *in.UpdatedAt
	}
	if c.Type == CellEmpty || isNull(in.Data) {
		return nil
	}
	e, err := DecodeEntity(c.Type, in.Data)
	if err != nil {
		c.Raw = in.Data
		return nil
	}
	c.Entity = e
	return nil
}

// DecodeEntity picks the payload struct from the cell kind.
func DecodeEntity(kind CellType, data []byte) (Entity, error) {
	var (
		e   Entity
		err error
	)
	switch kind {
	case CellCrop:
		var v Crop
		err = json.Unmarshal(data, &v)
		e = v
	case CellSupplier:
		var v Supplier
		err = json.Unmarshal(data, &v)
		e = v
	case CellCustomer:
		var v Customer
		err = json.Unmarshal(data, &v)
		e = v
	case CellWorker:
		var v Worker
		err = json.Unmarshal(data, &v)
		e = v
	case CellWarehouse:
		var v Warehouse
		err = json.Unmarshal(data, &v)
		e = v
	case CellReservoir:
		var v Reservoir
		err = json.Unmarshal(data, &v)
		e = v
	default:
		return nil, fmt.Errorf("unknown cell type %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return e, nil
}

func isNull(b json.RawMessage) bool {
	return len(b) == 0 || string(b) == "null"
}

package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"waira/entities"
	"waira/pkg/climate"
)

var (
	ErrUnknownKind  = errors.New("draft: unknown kind")
	ErrNotFound     = errors.New("draft: not found")
	ErrNotWarehouse = errors.New("draft: items only apply to warehouse drafts")
	ErrItemIndex    = errors.New("draft: item index out of range")
)

var totalSteps = map[entities.CellType]int{
	entities.CellCrop:      6,
	entities.CellSupplier:  4,
	entities.CellCustomer:  4,
	entities.CellWorker:    4,
	entities.CellWarehouse: 3,
	entities.CellReservoir: 3,
}

// TotalSteps is the wizard length for kind, 0 for anything that is not a
// populated kind.
func TotalSteps(kind entities.CellType) int { return totalSteps[kind] }

// SaveFunc persists the finished entity into the draft's cell.
type SaveFunc func(ctx context.Context, cellID string, e entities.Entity) error

// Draft is a wizard in progress. Fields only holds JSON values (maps,
// slices, strings, float64, bool) so it can be cloned and re-encoded freely.
type Draft struct {
	ID        string            `json:"id"`
	Owner     string            `json:"propietario"`
	CellID    string            `json:"celdaId"`
	Kind      entities.CellType `json:"tipo"`
	Step      int               `json:"paso"`
	Fields    map[string]any    `json:"datos"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func New(owner, cellID string, kind entities.CellType) (*Draft, error) {
	if TotalSteps(kind) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	now := time.Now().UTC()
	d := &Draft{
		ID:        uuid.NewString(),
		Owner:     owner,
		CellID:    cellID,
		Kind:      kind,
		Step:      1,
		Fields:    map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if kind == entities.CellWarehouse {
		d.Fields["items"] = []any{}
		d.Fields["capacidad_total"] = 0.0
		d.Fields["capacidad_usada"] = 0.0
	}
	return d, nil
}

// FromEntity opens a draft prefilled with an existing payload.
func FromEntity(owner, cellID string, e entities.Entity) (*Draft, error) {
	d, err := New(owner, cellID, e.Kind())
	if err != nil {
		return nil, err
	}
	v, err := toGeneric(e)
	if err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		d.Fields = m
	}
	return d, nil
}

func (d *Draft) TotalSteps() int { return TotalSteps(d.Kind) }

func (d *Draft) touch() { d.UpdatedAt = time.Now().UTC() }

// Set merges one top-level key.
func (d *Draft) Set(key string, value any) error {
	v, err := toGeneric(value)
	if err != nil {
		return err
	}
	d.Fields[key] = v
	d.touch()
	return nil
}

// SetNested merges one key into the sub-object under parent, creating it
// when missing.
func (d *Draft) SetNested(parent, key string, value any) error {
	v, err := toGeneric(value)
	if err != nil {
		return err
	}
	sub, ok := d.Fields[parent].(map[string]any)
	if !ok {
		sub = map[string]any{}
	}
	sub[key] = v
	d.Fields[parent] = sub
	d.touch()
	return nil
}

// Prev steps back; it reports false on the first step.
func (d *Draft) Prev() bool {
	if d.Step <= 1 {
		return false
	}
	d.Step--
	d.touch()
	return true
}

// Next advances one step. On the last step it builds and validates the
// entity and hands it to save; the returned entity is non-nil only then.
// A validation or save failure leaves the draft on the last step.
func (d *Draft) Next(ctx context.Context, save SaveFunc) (entities.Entity, error) {
	if d.Step < d.TotalSteps() {
		d.Step++
		d.touch()
		return nil, nil
	}
	e, err := d.Build()
	if err != nil {
		return nil, err
	}
	if err := entities.Validate(e); err != nil {
		return nil, err
	}
	if c, ok := e.(entities.Crop); ok {
		e = climate.Annotate(climate.Fill(c, climate.InputFromFields(d.Fields)))
	}
	if err := save(ctx, d.CellID, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Build decodes the fields into the typed entity without validating it.
func (d *Draft) Build() (entities.Entity, error) {
	b, err := json.Marshal(d.Fields)
	if err != nil {
		return nil, err
	}
	e, err := entities.DecodeEntity(d.Kind, b)
	if err != nil {
		return nil, entities.ValidationErrors{{Field: "datos", Message: err.Error()}}
	}
	return e, nil
}

// Risk is the live assessment shown while a crop draft is being filled.
func (d *Draft) Risk() (climate.Assessment, bool) {
	if d.Kind != entities.CellCrop {
		return climate.Assessment{}, false
	}
	return climate.Assess(climate.InputFromFields(d.Fields)), true
}

func (d *Draft) warehouse() (entities.Warehouse, error) {
	if d.Kind != entities.CellWarehouse {
		return entities.Warehouse{}, ErrNotWarehouse
	}
	e, err := d.Build()
	if err != nil {
		return entities.Warehouse{}, err
	}
	return e.(entities.Warehouse), nil
}

func (d *Draft) storeItems(w entities.Warehouse) error {
	items, err := toGeneric(w.Items)
	if err != nil {
		return err
	}
	if items == nil {
		items = []any{}
	}
	d.Fields["items"] = items
	d.Fields["capacidad_usada"] = w.UsedCapacity
	d.touch()
	return nil
}

func (d *Draft) AddItem(it entities.InventoryItem) error {
	w, err := d.warehouse()
	if err != nil {
		return err
	}
	w.AddItem(it)
	return d.storeItems(w)
}

func (d *Draft) RemoveItem(idx int) (entities.InventoryItem, error) {
	w, err := d.warehouse()
	if err != nil {
		return entities.InventoryItem{}, err
	}
	it, ok := w.RemoveItem(idx)
	if !ok {
		return entities.InventoryItem{}, ErrItemIndex
	}
	return it, d.storeItems(w)
}

func (d *Draft) clone() *Draft {
	cp := *d
	cp.Fields, _ = deepCopy(d.Fields).(map[string]any)
	return &cp
}

func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = deepCopy(x)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = deepCopy(x)
		}
		return s
	default:
		return t
	}
}

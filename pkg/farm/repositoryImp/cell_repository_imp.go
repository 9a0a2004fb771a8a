package repositoryImp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"waira/entities"
	docrepo "waira/pkg/document/repository"
	"waira/pkg/farm/repository"
)

// Collection is where farm cells live, one document per cell.
const Collection = "celdas_granja"

type CellRepo struct{ store docrepo.Store }

func New(store docrepo.Store) *CellRepo { return &CellRepo{store: store} }

// record is the stored shape; id and timestamps belong to the store.
type record struct {
	Type    entities.CellType `json:"tipo"`
	Subtype string            `json:"subtipo"`
	Row     int               `json:"fila"`
	Column  int               `json:"columna"`
	Data    any               `json:"datos"`
	Owner   string            `json:"propietario"`
}

func toRecord(c entities.Cell) record {
	return record{Type: c.Type, Subtype: c.Subtype, Row: c.Row, Column: c.Column, Data: c.Payload(), Owner: c.Owner}
}

func fromSnapshot(s docrepo.Snapshot) (entities.Cell, error) {
	var c entities.Cell
	if err := json.Unmarshal(s.Data, &c); err != nil {
		return entities.Cell{}, fmt.Errorf("decode cell %s: %w", s.ID, err)
	}
	c.ID = s.ID
	c.CreatedAt = s.CreatedAt
	c.UpdatedAt = s.UpdatedAt
	return c, nil
}

func fromSnapshots(snaps []docrepo.Snapshot) ([]entities.Cell, error) {
	out := make([]entities.Cell, 0, len(snaps))
	for _, s := range snaps {
		c, err := fromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func mapErr(err error) error {
	if errors.Is(err, docrepo.ErrNotFound) {
		return repository.ErrNotFound
	}
	return err
}

func (r *CellRepo) Create(ctx context.Context, cell entities.Cell) (entities.Cell, error) {
	if cell.Type == "" {
		cell.Type = entities.CellEmpty
	}
	snap, err := r.store.Create(ctx, Collection, toRecord(cell))
	if err != nil {
		return entities.Cell{}, fmt.Errorf("create cell (%d,%d): %w", cell.Row, cell.Column, err)
	}
	cell.ID = snap.ID
	cell.CreatedAt = snap.CreatedAt
	cell.UpdatedAt = snap.UpdatedAt
	return cell, nil
}

func (r *CellRepo) FindByID(ctx context.Context, id string) (entities.Cell, error) {
	snap, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return entities.Cell{}, mapErr(err)
	}
	return fromSnapshot(snap)
}

func (r *CellRepo) FindByOwner(ctx context.Context, owner string) ([]entities.Cell, error) {
	snaps, err := r.store.Query(ctx, Collection, docrepo.Eq("propietario", owner))
	if err != nil {
		return nil, fmt.Errorf("cells of %s: %w", owner, err)
	}
	return fromSnapshots(snaps)
}

func (r *CellRepo) FindByOwnerAndType(ctx context.Context, owner string, t entities.CellType) ([]entities.Cell, error) {
	snaps, err := r.store.Query(ctx, Collection, docrepo.Eq("propietario", owner), docrepo.Eq("tipo", string(t)))
	if err != nil {
		return nil, fmt.Errorf("cells of %s by %s: %w", owner, t, err)
	}
	return fromSnapshots(snaps)
}

func (r *CellRepo) FindByPosition(ctx context.Context, owner string, row, col int) (entities.Cell, error) {
	snaps, err := r.store.Query(ctx, Collection,
		docrepo.Eq("propietario", owner), docrepo.Eq("fila", row), docrepo.Eq("columna", col))
	if err != nil {
		return entities.Cell{}, fmt.Errorf("cell %s at %s: %w", owner, entities.PositionKey(row, col), err)
	}
	if len(snaps) == 0 {
		return entities.Cell{}, repository.ErrNotFound
	}
	return fromSnapshot(snaps[0])
}

func (r *CellRepo) UpdateContent(ctx context.Context, cell entities.Cell) error {
	err := r.store.Update(ctx, Collection, cell.ID, map[string]any{
		"tipo":    cell.Type,
		"subtipo": cell.Subtype,
		"datos":   cell.Payload(),
	})
	if err != nil {
		return fmt.Errorf("update cell %s: %w", cell.ID, mapErr(err))
	}
	return nil
}

func (r *CellRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete cell %s: %w", id, err)
	}
	return nil
}

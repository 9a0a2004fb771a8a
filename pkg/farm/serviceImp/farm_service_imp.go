package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"waira/entities"
	"waira/pkg/climate"
	"waira/pkg/farm/grid"
	"waira/pkg/farm/repository"
	"waira/pkg/farm/service"
	"waira/pkg/metrics"
	"waira/pkg/notify"
)

type FarmSvc struct {
	repo     repository.CellRepository
	layout   grid.Layout
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger

	// loads collapses concurrent first loads of one owner so the grid is
	// initialized once.
	loads  singleflight.Group
	maxAge time.Duration
	now    func() time.Time

	mu    sync.Mutex
	grids map[string]cached
}

type cached struct {
	g  *grid.Grid
	at time.Time
}

// DefaultCacheMaxAge is how long Stats and Grid trust a cached grid.
const DefaultCacheMaxAge = 30 * time.Second

func New(repo repository.CellRepository, layout grid.Layout, n notify.Notifier, m *metrics.Metrics, log *zap.Logger) *FarmSvc {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FarmSvc{
		repo:     repo,
		layout:   layout,
		notifier: n,
		metrics:  m,
		log:      log,
		maxAge:   DefaultCacheMaxAge,
		now:      time.Now,
		grids:    map[string]cached{},
	}
}

// SetCacheMaxAge changes how long a cached grid is served before it is read
// again. Zero or less disables the cache for Stats and Grid.
func (s *FarmSvc) SetCacheMaxAge(d time.Duration) { s.maxAge = d }

var _ service.FarmService = (*FarmSvc)(nil)

func (s *FarmSvc) Layout() grid.Layout { return s.layout }

func (s *FarmSvc) InitializeGrid(ctx context.Context, owner string, rows, cols int) ([]entities.Cell, error) {
	cells := grid.NewEmpty(owner, rows, cols)
	out := make([]entities.Cell, 0, len(cells))
	for _, c := range cells {
		created, err := s.repo.Create(ctx, c)
		if err != nil {
			return out, fmt.Errorf("initialize grid: %w", err)
		}
		out = append(out, created)
	}
	s.mu.Lock()
	delete(s.grids, owner)
	s.mu.Unlock()
	s.metrics.CellWrite("init", string(entities.CellEmpty))
	s.log.Info("grid initialized", zap.String("owner", owner), zap.Int("cells", len(out)))
	return out, nil
}

func (s *FarmSvc) LoadFarm(ctx context.Context, owner string) (*grid.Grid, error) {
	v, err, _ := s.loads.Do(owner, func() (any, error) {
		return s.load(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return grid.New(s.layout, v.(*grid.Grid).Cells()), nil
}

func (s *FarmSvc) load(ctx context.Context, owner string) (*grid.Grid, error) {
	cells, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		s.notifyFailure(ctx, owner, "No se pudo cargar la granja virtual.")
		return nil, err
	}
	if len(cells) == 0 {
		cells, err = s.InitializeGrid(ctx, owner, s.layout.Rows, s.layout.Cols)
		if err != nil {
			s.notifyFailure(ctx, owner, "No se pudo cargar la granja virtual.")
			return nil, err
		}
		s.send(ctx, owner, notify.Notification{
			Title: "Granja creada",
			Body:  "Se ha creado una nueva granja virtual para ti.",
			Level: notify.Success,
		})
	}
	g := grid.New(s.layout, cells)
	s.store(owner, g)
	return grid.New(s.layout, g.Cells()), nil
}

func (s *FarmSvc) store(owner string, g *grid.Grid) {
	s.mu.Lock()
	s.grids[owner] = cached{g: g, at: s.now()}
	s.mu.Unlock()
}

// current returns the cached grid, reading it from storage without
// initializing anything when the cache is cold or older than maxAge.
func (s *FarmSvc) current(ctx context.Context, owner string) (*grid.Grid, error) {
	s.mu.Lock()
	c, ok := s.grids[owner]
	s.mu.Unlock()
	if ok && s.now().Sub(c.at) < s.maxAge {
		return c.g, nil
	}
	cells, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	g := grid.New(s.layout, cells)
	s.store(owner, g)
	return g, nil
}

func (s *FarmSvc) Cell(ctx context.Context, owner, cellID string) (entities.Cell, error) {
	c, err := s.repo.FindByID(ctx, cellID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && c.Owner != owner) {
		return entities.Cell{}, service.ErrCellNotFound
	}
	return c, err
}

func (s *FarmSvc) UpdateCell(ctx context.Context, owner, cellID string, e entities.Entity) (entities.Cell, error) {
	if e == nil {
		return entities.Cell{}, entities.ValidationErrors{{Field: "datos", Message: "es obligatorio"}}
	}
	if err := entities.Validate(e); err != nil {
		return entities.Cell{}, err
	}
	if c, ok := e.(entities.Crop); ok {
		e = climate.Annotate(c)
	}
	cell, err := s.Cell(ctx, owner, cellID)
	if err != nil {
		return entities.Cell{}, err
	}
	if s.layout.IsOwnerCell(cell.Row, cell.Column) {
		return entities.Cell{}, service.ErrReservedCell
	}

	action := "actualizado"
	if cell.Empty() {
		action = "agregado"
	}
	cell.Assign(e)
	if err := s.repo.UpdateContent(ctx, cell); err != nil {
		s.log.Error("update cell", zap.String("owner", owner), zap.String("cell", cellID), zap.Error(err))
		s.notifyFailure(ctx, owner, "No se pudo actualizar el elemento.")
		return entities.Cell{}, err
	}
	cell.UpdatedAt = time.Now().UTC()
	s.replace(owner, cell)
	s.metrics.CellWrite("update", string(cell.Type))

	s.send(ctx, owner, notify.Notification{
		Title: "Elemento actualizado",
		Body:  fmt.Sprintf("Se ha %s %s en tu granja virtual.", action, cell.Type),
		Level: notify.Success,
		Data:  map[string]string{"celdaId": cell.ID, "tipo": string(cell.Type)},
	})
	return cell, nil
}

func (s *FarmSvc) ClearCell(ctx context.Context, owner, cellID string, confirmed bool) (entities.Cell, error) {
	if !confirmed {
		return entities.Cell{}, service.ErrConfirmationRequired
	}
	cell, err := s.Cell(ctx, owner, cellID)
	if err != nil {
		return entities.Cell{}, err
	}
	prev := cell.Type
	cell.Clear()
	if err := s.repo.UpdateContent(ctx, cell); err != nil {
		s.log.Error("clear cell", zap.String("owner", owner), zap.String("cell", cellID), zap.Error(err))
		s.notifyFailure(ctx, owner, "No se pudo eliminar el elemento.")
		return entities.Cell{}, err
	}
	cell.UpdatedAt = time.Now().UTC()
	s.replace(owner, cell)
	s.metrics.CellWrite("clear", string(prev))

	s.send(ctx, owner, notify.Notification{
		Title: "Elemento eliminado",
		Body:  "Se ha eliminado el elemento de tu granja virtual.",
		Level: notify.Success,
		Data:  map[string]string{"celdaId": cell.ID},
	})
	return cell, nil
}

// replace updates the cached grid, if any, after a successful write.
func (s *FarmSvc) replace(owner string, cell entities.Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.grids[owner]; ok && !c.g.Replace(cell) {
		delete(s.grids, owner)
	}
}

func (s *FarmSvc) Stats(ctx context.Context, owner string) (grid.Stats, error) {
	g, err := s.current(ctx, owner)
	if err != nil {
		return grid.Stats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return g.Stats(), nil
}

// Grid is a snapshot of the owner's grid, for rendering and export.
func (s *FarmSvc) Grid(ctx context.Context, owner string) (*grid.Grid, error) {
	g, err := s.current(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return grid.New(s.layout, g.Cells()), nil
}

func (s *FarmSvc) CellsByType(ctx context.Context, owner string, t entities.CellType) ([]entities.Cell, error) {
	if t == "" {
		return s.repo.FindByOwner(ctx, owner)
	}
	return s.repo.FindByOwnerAndType(ctx, owner, t)
}

func (s *FarmSvc) CellAt(ctx context.Context, owner string, row, col int) (entities.Cell, error) {
	c, err := s.repo.FindByPosition(ctx, owner, row, col)
	if errors.Is(err, repository.ErrNotFound) {
		return entities.Cell{}, service.ErrCellNotFound
	}
	return c, err
}

func (s *FarmSvc) notifyFailure(ctx context.Context, owner, msg string) {
	s.send(ctx, owner, notify.Notification{Title: "Error", Body: msg, Level: notify.Failure})
}

// send never fails the caller: the write already happened.
func (s *FarmSvc) send(ctx context.Context, owner string, n notify.Notification) {
	if err := s.notifier.Notify(ctx, owner, n); err != nil {
		s.log.Warn("notify", zap.String("owner", owner), zap.String("title", n.Title), zap.Error(err))
	}
}

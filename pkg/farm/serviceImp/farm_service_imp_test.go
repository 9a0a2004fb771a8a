package serviceImp

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waira/database"
	"waira/entities"
	docImp "waira/pkg/document/repositoryImp"
	"waira/pkg/farm/grid"
	"waira/pkg/farm/repository"
	"waira/pkg/farm/repositoryImp"
	"waira/pkg/farm/service"
	"waira/pkg/notify"
)

// =============================================================================
// HELPERS
// =============================================================================

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, _ string, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Title)
	}
	return out
}

func (r *recordingNotifier) last() notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

func newCellRepo(t *testing.T) repository.CellRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "farm.db"))
	require.NoError(t, err)
	return repositoryImp.New(docImp.NewSQLite(db))
}

func newService(t *testing.T) (*FarmSvc, *recordingNotifier, repository.CellRepository) {
	t.Helper()
	repo := newCellRepo(t)
	n := &recordingNotifier{}
	return New(repo, grid.DefaultLayout(), n, nil, nil), n, repo
}

func papa() entities.Crop {
	return entities.Crop{Name: "Papa nativa", Type: "papa", Area: 2.5, Health: 80}
}

// loaded returns the farm and the first non-owner cell.
func loaded(t *testing.T, s *FarmSvc, owner string) (*grid.Grid, entities.Cell) {
	t.Helper()
	g, err := s.LoadFarm(context.Background(), owner)
	require.NoError(t, err)
	c, ok := g.At(1, 1)
	require.True(t, ok)
	return g, c
}

// =============================================================================
// GRID INITIALIZATION
// =============================================================================

func TestLoadFarm_CreatesGridOnFirstUseOnly(t *testing.T) {
	s, n, _ := newService(t)

	g, err := s.LoadFarm(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, g.Len())
	assert.Equal(t, []string{"Granja creada"}, n.titles())

	g, err = s.LoadFarm(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, g.Len(), "second load reuses the stored grid")
	assert.Len(t, n.titles(), 1)
}

// slowReads widens the gap between reading an owner's cells and acting on
// the result.
type slowReads struct {
	repository.CellRepository
}

func (r slowReads) FindByOwner(ctx context.Context, owner string) ([]entities.Cell, error) {
	cells, err := r.CellRepository.FindByOwner(ctx, owner)
	time.Sleep(20 * time.Millisecond)
	return cells, err
}

func TestLoadFarm_ConcurrentFirstLoadsInitializeOnce(t *testing.T) {
	repo := newCellRepo(t)
	n := &recordingNotifier{}
	s := New(slowReads{repo}, grid.DefaultLayout(), n, nil, nil)

	const callers = 6
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		sizes = make([]int, callers)
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			g, err := s.LoadFarm(context.Background(), "u1")
			errs[i] = err
			if err == nil {
				sizes[i] = g.Len()
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 25, sizes[i])
	}
	all, err := repo.FindByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, all, 25)

	created := 0
	for _, title := range n.titles() {
		if title == "Granja creada" {
			created++
		}
	}
	assert.Equal(t, 1, created)

	st, err := s.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, st.Occupied+st.Empty)
}

func TestInitializeGrid_TwiceDuplicatesCells(t *testing.T) {
	s, _, repo := newService(t)
	ctx := context.Background()

	first, err := s.InitializeGrid(ctx, "u1", 5, 5)
	require.NoError(t, err)
	_, err = s.InitializeGrid(ctx, "u1", 5, 5)
	require.NoError(t, err)

	all, err := repo.FindByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 50, "initialization does not deduplicate")

	for _, c := range first {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, entities.CellEmpty, c.Type)
		assert.Equal(t, "u1", c.Owner)
	}
}

// =============================================================================
// CELL MUTATION
// =============================================================================

func TestUpdateCell_StoresEntityAndNotifies(t *testing.T) {
	s, n, repo := newService(t)
	ctx := context.Background()
	_, target := loaded(t, s, "u1")

	cell, err := s.UpdateCell(ctx, "u1", target.ID, papa())
	require.NoError(t, err)
	assert.Equal(t, entities.CellCrop, cell.Type)
	assert.Equal(t, "papa", cell.Subtype)

	stored, err := repo.FindByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CellCrop, stored.Type)
	require.IsType(t, entities.Crop{}, stored.Entity)
	assert.Equal(t, 2.5, stored.Entity.(entities.Crop).Area)

	assert.Equal(t, "Se ha agregado cultivo en tu granja virtual.", n.last().Body)

	_, err = s.UpdateCell(ctx, "u1", target.ID, papa())
	require.NoError(t, err)
	assert.Equal(t, "Se ha actualizado cultivo en tu granja virtual.", n.last().Body)

	st, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Crops)
	assert.Equal(t, 2.5, st.CultivatedArea)
}

func TestUpdateCell_CropGetsComputedRiskLevel(t *testing.T) {
	s, _, repo := newService(t)
	ctx := context.Background()
	_, target := loaded(t, s, "u1")

	crop := papa()
	crop.RiskLevel = "low"
	crop.SoilType = "arcilloso"
	cell, err := s.UpdateCell(ctx, "u1", target.ID, crop)
	require.NoError(t, err)
	assert.Equal(t, "medium", cell.Entity.(entities.Crop).RiskLevel)

	stored, err := repo.FindByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "medium", stored.Entity.(entities.Crop).RiskLevel)
}

func TestUpdateCell_RejectsOwnerCell(t *testing.T) {
	s, _, _ := newService(t)
	g, _ := loaded(t, s, "u1")
	owner, ok := g.At(grid.DefaultOwnerRow, grid.DefaultOwnerCol)
	require.True(t, ok)

	_, err := s.UpdateCell(context.Background(), "u1", owner.ID, papa())
	assert.ErrorIs(t, err, service.ErrReservedCell)
}

func TestUpdateCell_ValidatesBeforeWriting(t *testing.T) {
	s, _, repo := newService(t)
	_, target := loaded(t, s, "u1")

	_, err := s.UpdateCell(context.Background(), "u1", target.ID, entities.Crop{Type: "papa"})
	var verrs entities.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "nombre", verrs[0].Field)

	stored, err := repo.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, stored.Empty())
}

func TestUpdateCell_OtherOwnerSeesNotFound(t *testing.T) {
	s, _, _ := newService(t)
	_, target := loaded(t, s, "u1")

	_, err := s.UpdateCell(context.Background(), "intruder", target.ID, papa())
	assert.ErrorIs(t, err, service.ErrCellNotFound)

	_, err = s.Cell(context.Background(), "u1", "missing-id")
	assert.ErrorIs(t, err, service.ErrCellNotFound)
}

// =============================================================================
// CLEAR + STATS
// =============================================================================

func TestClearCell_ThenStats(t *testing.T) {
	s, n, _ := newService(t)
	ctx := context.Background()
	_, target := loaded(t, s, "u1")

	_, err := s.UpdateCell(ctx, "u1", target.ID, papa())
	require.NoError(t, err)

	_, err = s.ClearCell(ctx, "u1", target.ID, false)
	assert.ErrorIs(t, err, service.ErrConfirmationRequired)

	cleared, err := s.ClearCell(ctx, "u1", target.ID, true)
	require.NoError(t, err)
	assert.True(t, cleared.Empty())
	assert.Equal(t, "Elemento eliminado", n.last().Title)

	st, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Crops)
	assert.Equal(t, 0, st.Occupied)
	assert.Equal(t, 25, st.Empty)
	assert.Zero(t, st.CultivatedArea)

	// the document stays, back to vacio
	at, err := s.CellAt(ctx, "u1", target.Row, target.Column)
	require.NoError(t, err)
	assert.Equal(t, target.ID, at.ID)
	assert.True(t, at.Empty())
	assert.Nil(t, at.Entity)
}

func TestCellsByTypeAndPosition(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	_, target := loaded(t, s, "u1")
	_, err := s.UpdateCell(ctx, "u1", target.ID, papa())
	require.NoError(t, err)

	crops, err := s.CellsByType(ctx, "u1", entities.CellCrop)
	require.NoError(t, err)
	require.Len(t, crops, 1)
	assert.Equal(t, target.ID, crops[0].ID)

	all, err := s.CellsByType(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 25)

	_, err = s.CellAt(ctx, "u1", 9, 9)
	assert.ErrorIs(t, err, service.ErrCellNotFound)
}

func TestStats_RereadsStorageOnceCacheIsOld(t *testing.T) {
	s, _, repo := newService(t)
	ctx := context.Background()
	clock := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	_, target := loaded(t, s, "u1")

	// another process writes the cell behind this one's back
	target.Assign(papa())
	require.NoError(t, repo.UpdateContent(ctx, target))

	st, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Crops, "still within the cache age")

	clock = clock.Add(DefaultCacheMaxAge)
	st, err = s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Crops)
	assert.Equal(t, 2.5, st.CultivatedArea)
}

func TestStats_ZeroMaxAgeAlwaysReads(t *testing.T) {
	s, _, repo := newService(t)
	s.SetCacheMaxAge(0)
	ctx := context.Background()
	_, target := loaded(t, s, "u1")

	target.Assign(papa())
	require.NoError(t, repo.UpdateContent(ctx, target))

	g, err := s.Grid(ctx, "u1")
	require.NoError(t, err)
	c, ok := g.At(1, 1)
	require.True(t, ok)
	assert.Equal(t, entities.CellCrop, c.Type)
}

// =============================================================================
// STORAGE FAILURES
// =============================================================================

type failingUpdates struct {
	repository.CellRepository
	err error
}

func (f failingUpdates) UpdateContent(context.Context, entities.Cell) error { return f.err }

func TestUpdateCell_StorageFailureLeavesGridAlone(t *testing.T) {
	repo := newCellRepo(t)
	boom := errors.New("disk full")
	n := &recordingNotifier{}
	s := New(failingUpdates{CellRepository: repo, err: boom}, grid.DefaultLayout(), n, nil, nil)
	_, target := loaded(t, s, "u1")

	_, err := s.UpdateCell(context.Background(), "u1", target.ID, papa())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "No se pudo actualizar el elemento.", n.last().Body)
	assert.Equal(t, notify.Failure, n.last().Level)

	st, err := s.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Crops)
}

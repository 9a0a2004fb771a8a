package repositoryImp

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waira/entities"
)

func TestSnapshotOf_NonFiniteNumbersBecomeNull(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data := map[string]any{
		"tipo":    "cultivo",
		"fila":    int64(1),
		"columna": int64(2),
		"datos": map[string]any{
			"area":     math.NaN(),
			"salud":    math.Inf(1),
			"lecturas": []any{math.Inf(-1), "ok", 3.5},
		},
	}
	data[fieldCreatedAt] = created

	snap, err := snapshotOf("c1", time.Time{}, time.Time{}, data)
	require.NoError(t, err)
	assert.Equal(t, "c1", snap.ID)
	assert.Equal(t, created, snap.CreatedAt)
	assert.JSONEq(t,
		`{"tipo":"cultivo","fila":1,"columna":2,"datos":{"area":null,"salud":null,"lecturas":[null,"ok",3.5]}}`,
		string(snap.Data))

	var c entities.Cell
	require.NoError(t, json.Unmarshal(snap.Data, &c))
	assert.Equal(t, entities.CellCrop, c.Type)
	crop, ok := c.Entity.(entities.Crop)
	require.True(t, ok)
	assert.Zero(t, crop.Area)
}

func TestSnapshotOf_FiniteDocumentUntouched(t *testing.T) {
	snap, err := snapshotOf("x", time.Time{}, time.Time{}, map[string]any{"capacidad": 1200.0, "nombre": "Laguna"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"capacidad":1200,"nombre":"Laguna"}`, string(snap.Data))
}

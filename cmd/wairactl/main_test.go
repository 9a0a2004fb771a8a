package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"waira/pkg/farm/export"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{"STORE_BACKEND", "AUTH_MODE", "NOTIFIER", "GRID_ROWS", "GRID_COLS", "OWNER_ROW", "OWNER_COL"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestRisk_SingleCrop(t *testing.T) {
	isolate(t)
	out, err := run(t, "risk", "--tipo", "oca", "--suelo", "arcilloso", "--agua", "lejos")
	require.NoError(t, err)
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "suelo_arcilloso,agua_lejos")

	_, err = run(t, "risk")
	assert.ErrorContains(t, err, "--tipo")
}

func TestRisk_BatchFileJSON(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cultivos.csv")
	require.NoError(t, os.WriteFile(path, []byte("nombre,tipo\nParcela 1,quinua\nParcela 2,oca\n"), 0o644))

	out, err := run(t, "risk", "--file", path, "--json")
	require.NoError(t, err)
	var res []riskResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 2)
	assert.Equal(t, "Parcela 1", res[0].Name)
	assert.Equal(t, 2, res[0].Line)
	assert.EqualValues(t, "low", res[0].Assessment.Level)
}

func TestFarmCommands(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "cli.db")
	t.Setenv("GRID_ROWS", "2")
	t.Setenv("GRID_COLS", "3")

	out, err := run(t, "--db", db, "init-grid", "--owner", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "6 celdas creadas para ana")

	out, err = run(t, "--db", db, "stats", "--owner", "ana")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.EqualValues(t, 0, st["ocupadas"])
	assert.EqualValues(t, 6, st["vacias"])

	xlsx := filepath.Join(dir, "ana.xlsx")
	out, err = run(t, "--db", db, "export", "--owner", "ana", "-o", xlsx)
	require.NoError(t, err)
	assert.Equal(t, xlsx, strings.TrimSpace(out))

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.GridSheet, export.StatsSheet}, f.GetSheetList())

	_, err = run(t, "--db", db, "stats")
	assert.ErrorContains(t, err, "--owner")
}

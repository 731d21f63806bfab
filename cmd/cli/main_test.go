package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridalpha/internal/config"
	"gridalpha/internal/data"
	"gridalpha/internal/store"
)

const psegCurve = `{"zone": "pseg", "date": "2024-07-15",
 "prices": [28, 25, 22, 21, 23, 30, 42, 55, 48, 40, 33, 27, 24, 26, 31, 38, 52, 74, 96, 88, 70, 51, 40, 33]}`

func writeCurve(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeCurve(t, dir, "a.json", psegCurve)
	writeCurve(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	got, err := expandPaths(splitPaths(" " + dir + " ,, " + a))
	require.NoError(t, err)
	assert.Equal(t, []string{a, a}, got)

	_, err = expandPaths([]string{filepath.Join(dir, "missing.json")})
	assert.Error(t, err)
}

func TestImportCanonicalizesZone(t *testing.T) {
	dir := t.TempDir()
	writeCurve(t, dir, "pseg.json", psegCurve)
	dbPath := filepath.Join(dir, "prices.db")

	require.NoError(t, cmdImport([]string{"--data", dir, "--db", dbPath}))

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	dates, err := store.NewPriceStore(db).ListDates(context.Background(), "PSEG")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-07-15"}, dates)
}

func TestImportRequiresData(t *testing.T) {
	assert.Error(t, cmdImport([]string{"--db", filepath.Join(t.TempDir(), "x.db")}))
}

func TestScheduleWritesLedger(t *testing.T) {
	dir := t.TempDir()
	prices := writeCurve(t, dir, "pseg.json", psegCurve)
	out := filepath.Join(dir, "out", "ledger.csv")

	require.NoError(t, cmdSchedule([]string{"--prices", prices, "--out", out}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hour,")
}

func TestScheduleFromZoneFallsBackToDemo(t *testing.T) {
	t.Setenv("PJM_API_KEY", "")
	curve, err := fetchCurve(loadDefault(t), "pseg", "2024-07-15", "")
	require.NoError(t, err)
	assert.Equal(t, data.DemoCurve("PSEG", curve.Date).Prices, curve.Prices)

	_, err = fetchCurve(loadDefault(t), "ERCOT", "", "")
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	dir := t.TempDir()
	writeCurve(t, dir, "pseg.json", psegCurve)
	writeCurve(t, dir, "dom.json", `{"zone": "DOM", "date": "2024-07-15", "prices": [30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30,30]}`)
	assert.NoError(t, cmdRank([]string{"--data", dir}))

	assert.Error(t, cmdRank([]string{"--data", filepath.Join(dir, "missing")}))
}

func loadDefault(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := loadConfig("")
	require.NoError(t, err)
	return cfg
}

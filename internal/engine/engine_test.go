package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/reportcols/internal/rowsize"
	"github.com/leapstack-labs/reportcols/internal/state"
	"github.com/leapstack-labs/reportcols/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	multiMaster = "3fd631d8-0b5a-4d75-be1a-5b500cc1c90c"
	multiSlave  = "0ab7516e-f492-4bc6-9bf4-56fb106e1ab8"
)

const multiDefinition = `
report:
  id: weekly-nps
  project: 3fd631d8-0b5a-4d75-be1a-5b500cc1c90c
  used_questions: [Q1]
projects:
  - id: 3fd631d8-0b5a-4d75-be1a-5b500cc1c90c
    multi_subject: true
    questions:
      - {id: Q5, kind: plain, single_display: true}
      - {id: Q1, kind: plain}
      - {id: Q7, kind: rating, rows: [a, b]}
  - id: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8
    questions:
      - {id: Q1, kind: plain, single_display: true}
      - {id: Q2, kind: plain}
mappings:
  - {slave_project: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8, master_question: Q5, slave_question: Q1}
  - {slave_project: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8, master_question: Q1, slave_question: Q2}
`

func definitionFor(reportID string) string {
	return strings.Replace(multiDefinition, "weekly-nps", reportID, 1)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Logger = testutil.NewTestLogger(t)
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestResolveFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "report.yaml", multiDefinition)
	e := newEngine(t, Config{RowSize: rowsize.Config{AssumeSafe: true}})

	fr, err := e.ResolveFile(context.Background(), path, Options{Slave: multiSlave, Probe: true})
	require.NoError(t, err)

	assert.Equal(t, "weekly-nps", fr.ReportID)
	assert.Equal(t, multiMaster, fr.Master)
	assert.True(t, fr.Multi)
	assert.True(t, fr.Probed)
	assert.True(t, strings.HasPrefix(fr.CombCols,
		"[0ab7516e-f492-4bc6-9bf4-56fb106e1ab8ContextResp].Q1Row1 AS Q5Row1,[0ab7516e-f492-4bc6-9bf4-56fb106e1ab8].Q2Row1 AS Q1Row1,"))
	assert.Contains(t, fr.CombCols, "CAST (NULL AS FLOAT) AS Q7Row1")
}

func TestResolveFile_NarrowsWhenGuardUnsafe(t *testing.T) {
	path := writeFile(t, t.TempDir(), "report.yaml", multiDefinition)
	e := newEngine(t, Config{RowSize: rowsize.Config{AssumeSafe: false}, NarrowType: "TINYINT"})

	fr, err := e.ResolveFile(context.Background(), path, Options{Slave: multiSlave})
	require.NoError(t, err)
	assert.Contains(t, fr.Cols, "CAST (NULL AS TINYINT) AS Q7Row1")
	assert.False(t, fr.RowSizeSafe)
}

func TestResolveFile_UsedOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "report.yaml", multiDefinition)
	e := newEngine(t, Config{})

	fr, err := e.ResolveFile(context.Background(), path, Options{UsedOnly: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fr.ColAlias, "Q1Row1,UserPrincipal,"))
}

func TestResolveFile_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "report.yaml", multiDefinition)
	bad := writeFile(t, dir, "bad.yaml", "report: [")
	e := newEngine(t, Config{})

	_, err := e.ResolveFile(context.Background(), bad, Options{})
	assert.Error(t, err)

	_, err = e.ResolveFile(context.Background(), good, Options{Slave: "6ca3871a-2411-4c31-923a-9184ec1d1892"})
	assert.Error(t, err)

	_, err = e.ResolveFile(context.Background(), good, Options{MappingFromState: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state path not configured")
}

func TestResolveFiles_KeepsOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var paths []string
	for _, id := range []string{"r0", "r1", "r2", "r3", "r4", "r5"} {
		paths = append(paths, writeFile(t, dir, id+".yaml", definitionFor(id)))
	}

	e, err := New(Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	results, err := e.ResolveFiles(context.Background(), paths, Options{Slave: multiSlave, Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, fr := range results {
		assert.Equal(t, paths[i], fr.Path)
		assert.Equal(t, "r"+string(rune('0'+i)), fr.ReportID)
	}
}

func TestResolveFiles_FirstErrorWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "ok.yaml", multiDefinition),
		filepath.Join(dir, "missing.yaml"),
	}

	e, err := New(Config{})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	_, err = e.ResolveFiles(context.Background(), paths, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open definition")
}

func TestMappingsThroughState(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.yaml", multiDefinition)
	e := newEngine(t, Config{StatePath: filepath.Join(dir, "state", "state.db")})
	ctx := context.Background()

	reportID, n, err := e.ImportMappings(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "weekly-nps", reportID)
	assert.Equal(t, 2, n)

	reports, err := e.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Mappings)

	chain, err := e.Trace(ctx, "weekly-nps", "Q5", multiSlave)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, chain)

	// A definition without mappings still resolves through the stored ones.
	bare := strings.Split(multiDefinition, "mappings:")[0]
	barePath := writeFile(t, dir, "bare.yaml", bare)

	fr, err := e.ResolveFile(ctx, barePath, Options{Slave: multiSlave, MappingFromState: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fr.Cols, "[0ab7516e-f492-4bc6-9bf4-56fb106e1ab8].Q1Row1 AS Q5Row1,"))

	_, err = e.Trace(ctx, "unknown", "Q5", multiSlave)
	assert.True(t, state.IsNotFound(err))

	require.NoError(t, e.DeleteMappings(ctx, "weekly-nps"))
	_, err = e.StoredMapping(ctx, "weekly-nps")
	assert.True(t, state.IsNotFound(err))
	assert.True(t, state.IsNotFound(e.DeleteMappings(ctx, "weekly-nps")))
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "report.yaml", multiDefinition)

	e, err := New(Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reports []string
	events := make(chan struct{}, 8)

	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, []string{path}, Options{}, func(_ string, res *FileResult, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				reports = append(reports, res.ReportID)
			} else {
				reports = append(reports, "error")
			}
			events <- struct{}{}
		})
	}()

	latest := func() string {
		mu.Lock()
		defer mu.Unlock()
		return reports[len(reports)-1]
	}
	waitFor := func(want string) {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case <-events:
				if latest() == want {
					return
				}
			case <-timeout:
				t.Fatalf("timed out waiting for %s", want)
			}
		}
	}

	waitFor("weekly-nps")
	require.NoError(t, os.WriteFile(path, []byte(definitionFor("renamed")), 0o600))
	waitFor("renamed")

	cancel()
	require.NoError(t, <-done)
}

package dashboard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, store *memoryStore, seed ...WidgetConfig) (*Grid, *recordingHook) {
	t.Helper()
	hook := &recordingHook{}
	grid := NewGrid(GridOptions{Store: store, RefreshHook: hook})
	require.NoError(t, grid.Load(context.Background()))
	for _, w := range seed {
		require.NoError(t, grid.Add(context.Background(), w))
	}
	hook.events = nil
	return grid, hook
}

func TestGridLoadMissingBlobIsEmpty(t *testing.T) {
	grid, _ := newTestGrid(t, newMemoryStore())
	assert.Empty(t, grid.Widgets())
	assert.NotNil(t, grid.Widgets())
}

func TestGridLoadCorruptBlobIsEmpty(t *testing.T) {
	store := newMemoryStore()
	store.blobs[DefaultStorageKey] = []byte(`{not json`)
	grid, _ := newTestGrid(t, store)
	assert.Empty(t, grid.Widgets())
}

func TestGridLoadSchemaInvalidBlobIsEmpty(t *testing.T) {
	store := newMemoryStore()
	store.blobs[DefaultStorageKey] = []byte(`[{"title":"no id"}]`)
	grid, _ := newTestGrid(t, store)
	assert.Empty(t, grid.Widgets())
}

func TestGridLoadDuplicateIDsIsEmpty(t *testing.T) {
	store := newMemoryStore()
	store.blobs[DefaultStorageKey] = []byte(`[{"id":"a"},{"id":"a"}]`)
	grid, _ := newTestGrid(t, store)
	assert.Empty(t, grid.Widgets())
}

func TestGridLoadStoreErrorIsReturned(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = errStoreDown
	grid := NewGrid(GridOptions{Store: store})
	err := grid.Load(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGridLoadRestoresPersistedOrder(t *testing.T) {
	store := newMemoryStore()
	first, _ := newTestGrid(t, store, widget("a"), widget("b"), widget("c"))
	require.NoError(t, first.Reorder(context.Background(), "c", "a"))

	second, _ := newTestGrid(t, store)
	assert.Equal(t, []string{"c", "a", "b"}, ids(second.Widgets()))
	got, ok := second.Widget("a")
	require.True(t, ok)
	assert.Equal(t, "Widget a", got.Title)
	assert.Equal(t, ChartBar, got.ChartType)
	assert.Equal(t, []string{"Category", "Value"}, got.Columns)
	assert.Equal(t, Span{ColSpan: 2, RowSpan: 1}, got.Span())
}

func TestGridPersistsBlobFormat(t *testing.T) {
	store := newMemoryStore()
	newTestGrid(t, store, widget("a"))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(store.raw(DefaultStorageKey), &decoded))
	require.Len(t, decoded, 1)
	for _, key := range []string{"id", "title", "chartType", "sql", "data", "columns", "colSpan", "rowSpan"} {
		assert.Contains(t, decoded[0], key)
	}
}

func TestGridAddRejectsDuplicateID(t *testing.T) {
	grid, _ := newTestGrid(t, newMemoryStore(), widget("a"))
	err := grid.Add(context.Background(), widget("a"))
	assert.ErrorIs(t, err, ErrDuplicateWidget)
	assert.Len(t, grid.Widgets(), 1)
}

func TestGridDelete(t *testing.T) {
	store := newMemoryStore()
	grid, hook := newTestGrid(t, store, widget("a"), widget("b"))

	require.NoError(t, grid.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"b"}, ids(grid.Widgets()))
	assert.Equal(t, []string{ReasonDeleted}, hook.reasons())

	saves := store.saves
	require.NoError(t, grid.Delete(context.Background(), "missing"))
	assert.Equal(t, saves, store.saves, "unknown id must not persist")
}

func TestGridUpdateChartTypeOnlyTouchesChartType(t *testing.T) {
	grid, hook := newTestGrid(t, newMemoryStore(), widget("a"))

	require.NoError(t, grid.UpdateChartType(context.Background(), "a", ChartPie))
	got, _ := grid.Widget("a")
	want := widget("a")
	want.ChartType = ChartPie
	assert.Equal(t, want, got)
	require.Len(t, hook.events, 1)
	require.NotNil(t, hook.events[0].Widget)
	assert.Equal(t, ChartPie, hook.events[0].Widget.ChartType)
}

func TestGridSaveLayout(t *testing.T) {
	grid, _ := newTestGrid(t, newMemoryStore(), widget("a"))

	require.NoError(t, grid.SaveLayout(context.Background(), "a", Span{ColSpan: 4, RowSpan: 3}))
	got, _ := grid.Widget("a")
	assert.Equal(t, Span{ColSpan: 4, RowSpan: 3}, got.Span())
}

func TestGridReorder(t *testing.T) {
	grid, hook := newTestGrid(t, newMemoryStore(), widget("a"), widget("b"), widget("c"))

	require.NoError(t, grid.Reorder(context.Background(), "a", "c"))
	assert.Equal(t, []string{"b", "c", "a"}, ids(grid.Widgets()))
	require.Len(t, hook.events, 1)
	assert.Equal(t, []string{"b", "c", "a"}, hook.events[0].Order)
	assert.Nil(t, hook.events[0].Widget)
}

func TestGridReorderNoopCases(t *testing.T) {
	store := newMemoryStore()
	grid, hook := newTestGrid(t, store, widget("a"), widget("b"))
	saves := store.saves

	require.NoError(t, grid.Reorder(context.Background(), "a", "a"))
	require.NoError(t, grid.Reorder(context.Background(), "a", "missing"))
	require.NoError(t, grid.Reorder(context.Background(), "missing", "a"))

	assert.Equal(t, []string{"a", "b"}, ids(grid.Widgets()))
	assert.Equal(t, saves, store.saves)
	assert.Empty(t, hook.events)
}

func TestGridReorderIsReversibleForPairs(t *testing.T) {
	grid, _ := newTestGrid(t, newMemoryStore(), widget("a"), widget("b"))

	require.NoError(t, grid.Reorder(context.Background(), "a", "b"))
	assert.Equal(t, []string{"b", "a"}, ids(grid.Widgets()))
	require.NoError(t, grid.Reorder(context.Background(), "b", "a"))
	assert.Equal(t, []string{"a", "b"}, ids(grid.Widgets()))
}

func TestGridApplyOrder(t *testing.T) {
	store := newMemoryStore()
	grid, hook := newTestGrid(t, store, widget("a"), widget("b"), widget("c"))

	require.NoError(t, grid.ApplyOrder(context.Background(), []string{"c", "ghost", "a"}))
	assert.Equal(t, []string{"c", "a", "b"}, ids(grid.Widgets()))

	saves := store.saves
	require.NoError(t, grid.ApplyOrder(context.Background(), []string{"c", "a", "b"}))
	assert.Equal(t, saves, store.saves, "unchanged order must not persist")
	assert.Len(t, hook.events, 1)
}

func TestGridSaveFailureKeepsPreviousState(t *testing.T) {
	store := newMemoryStore()
	grid, hook := newTestGrid(t, store, widget("a"), widget("b"))
	store.saveErr = errStoreDown

	err := grid.Reorder(context.Background(), "a", "b")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, []string{"a", "b"}, ids(grid.Widgets()))

	err = grid.Add(context.Background(), widget("c"))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Len(t, grid.Widgets(), 2)
	assert.Empty(t, hook.events)
}

func TestGridHookErrorDoesNotFailMutation(t *testing.T) {
	store := newMemoryStore()
	hook := &recordingHook{err: errStoreDown}
	grid := NewGrid(GridOptions{Store: store, RefreshHook: hook})
	require.NoError(t, grid.Load(context.Background()))

	require.NoError(t, grid.Add(context.Background(), widget("a")))
	assert.Len(t, grid.Widgets(), 1)
}

func TestGridRecordsTelemetry(t *testing.T) {
	telemetry := &recordingTelemetry{}
	grid := NewGrid(GridOptions{Store: newMemoryStore(), Telemetry: telemetry})
	require.NoError(t, grid.Load(context.Background()))

	require.NoError(t, grid.Add(context.Background(), widget("a")))
	require.NoError(t, grid.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"dashboard.widget.added", "dashboard.widget.deleted"}, telemetry.events)
}

func TestGridWidgetsReturnsCopies(t *testing.T) {
	grid, _ := newTestGrid(t, newMemoryStore(), widget("a"))

	list := grid.Widgets()
	list[0].Title = "mutated"
	list[0].Data[0]["Value"] = 99

	got, _ := grid.Widget("a")
	assert.Equal(t, "Widget a", got.Title)
	assert.Equal(t, 1, got.Data[0]["Value"])
}

func TestGridRequiresStore(t *testing.T) {
	grid := NewGrid(GridOptions{})
	assert.Error(t, grid.Load(context.Background()))
	assert.Error(t, grid.Add(context.Background(), widget("a")))
}

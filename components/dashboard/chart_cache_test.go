package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(10 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(2 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestRenderKeyTracksContent(t *testing.T) {
	rows := []Row{{"Device": "Desktop", "Users": 4500}}
	cols := []string{"Device", "Users"}

	base := renderKey(ChartPie, rows, cols)
	assert.Equal(t, base, renderKey(ChartPie, []Row{{"Device": "Desktop", "Users": 4500}}, cols))
	assert.NotEqual(t, base, renderKey(ChartDonut, rows, cols))
	assert.NotEqual(t, base, renderKey(ChartPie, []Row{{"Device": "Desktop", "Users": 4501}}, cols))
}

func TestDispatcherUsesCache(t *testing.T) {
	cache := NewChartCache(time.Minute)
	d := NewDispatcher(WithRenderCache(cache))
	rows := []Row{{"Month": "Jan", "Visitors": 12000}}

	first, err := d.Render(ChartArea, rows, []string{"Month", "Visitors"})
	require.NoError(t, err)
	second, err := d.Render(ChartArea, rows, []string{"Month", "Visitors"})
	require.NoError(t, err)

	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, 1, cache.Len())
}

package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibrary(t *testing.T) {
	lib := DefaultLibrary()
	templates := lib.Templates()
	require.Len(t, templates, 12)
	assert.Equal(t, "1", templates[0].ID)

	tpl, ok := lib.Template("8")
	require.True(t, ok)
	assert.Equal(t, "SELECT Device, Users FROM DeviceUsage", tpl.SQL)
	for _, tpl := range templates {
		assert.True(t, tpl.ChartType.Valid(), tpl.ID)
		assert.NotEmpty(t, tpl.Icon, tpl.ID)
	}

	_, ok = lib.Template("99")
	assert.False(t, ok)
}

func TestLibraryTemplatesReturnsCopy(t *testing.T) {
	lib := DefaultLibrary()
	templates := lib.Templates()
	templates[0].Title = "mutated"

	tpl, _ := lib.Template("1")
	assert.NotEqual(t, "mutated", tpl.Title)
}

func TestDecodeLibraryValidation(t *testing.T) {
	cases := map[string]string{
		"unknown chart type": `
version: "1"
widgets:
  - id: a
    title: A
    chart_type: scatter
    sql: SELECT 1
`,
		"missing sql": `
widgets:
  - id: a
    title: A
    chart_type: bar
`,
		"duplicate id": `
widgets:
  - {id: a, title: A, chart_type: bar, sql: SELECT 1}
  - {id: a, title: B, chart_type: pie, sql: SELECT 2}
`,
		"unknown field": `
widgets:
  - {id: a, title: A, chart_type: bar, sql: SELECT 1, colour: red}
`,
		"bad version": `
version: "2"
widgets: []
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLibrary(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestReadLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
widgets:
  - {id: custom, title: Custom, chart_type: line, sql: SELECT Month, Visitors FROM WebsiteTraffic, icon: line-chart}
`), 0o600))

	doc, err := ReadLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, LibraryVersion, doc.Version)

	lib, err := NewLibrary(doc.Widgets)
	require.NoError(t, err)
	tpl, ok := lib.Template("custom")
	require.True(t, ok)
	assert.Equal(t, ChartLine, tpl.ChartType)
}

package dashboard

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	libraryVersionV1 = "1"
	// LibraryVersion exposes the current library document version for tooling.
	LibraryVersion = libraryVersionV1
)

//go:embed data/library.yaml
var defaultLibraryYAML []byte

// LibraryDocument models the YAML document listing predefined widgets.
type LibraryDocument struct {
	Version string             `json:"version" yaml:"version"`
	Widgets []PredefinedWidget `json:"widgets" yaml:"widgets"`
	Source  string             `json:"-" yaml:"-"`
}

// Library is a read-only, ordered set of predefined widget templates.
type Library struct {
	templates []PredefinedWidget
	index     map[string]int
}

// NewLibrary indexes the given templates; ids must be unique.
func NewLibrary(templates []PredefinedWidget) (*Library, error) {
	doc := &LibraryDocument{Version: libraryVersionV1, Widgets: templates}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	lib := &Library{
		templates: append([]PredefinedWidget(nil), templates...),
		index:     make(map[string]int, len(templates)),
	}
	for i, tpl := range lib.templates {
		lib.index[tpl.ID] = i
	}
	return lib, nil
}

// DefaultLibrary returns the built-in twelve-template library.
func DefaultLibrary() *Library {
	doc, err := DecodeLibrary(bytes.NewReader(defaultLibraryYAML))
	if err != nil {
		panic(fmt.Sprintf("dashboard: embedded library is invalid: %v", err))
	}
	lib, err := NewLibrary(doc.Widgets)
	if err != nil {
		panic(fmt.Sprintf("dashboard: embedded library is invalid: %v", err))
	}
	return lib
}

// Templates lists the templates in catalog order.
func (l *Library) Templates() []PredefinedWidget {
	if l == nil {
		return nil
	}
	return append([]PredefinedWidget(nil), l.templates...)
}

// Template looks up a template by id.
func (l *Library) Template(id string) (PredefinedWidget, bool) {
	if l == nil {
		return PredefinedWidget{}, false
	}
	idx, ok := l.index[id]
	if !ok {
		return PredefinedWidget{}, false
	}
	return l.templates[idx], true
}

// ReadLibrary loads a library document from disk.
func ReadLibrary(path string) (*LibraryDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open library %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeLibrary(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode library %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeLibrary reads a library document from any reader.
func DecodeLibrary(r io.Reader) (*LibraryDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc LibraryDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: library is empty")
		}
		return nil, fmt.Errorf("dashboard: parse library: %w", err)
	}
	if doc.Version == "" {
		doc.Version = libraryVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures every template has an id, title, known chart type and query.
func (doc *LibraryDocument) Validate() error {
	if doc.Version != libraryVersionV1 {
		return fmt.Errorf("dashboard: unsupported library version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, w := range doc.Widgets {
		if strings.TrimSpace(w.ID) == "" {
			return fmt.Errorf("dashboard: library widget at index %d is missing id", idx)
		}
		if w.Title == "" {
			return fmt.Errorf("dashboard: library widget %s missing title", w.ID)
		}
		if !w.ChartType.Valid() {
			return fmt.Errorf("dashboard: library widget %s: %w: %q", w.ID, ErrUnknownChartType, w.ChartType)
		}
		if strings.TrimSpace(w.SQL) == "" {
			return fmt.Errorf("dashboard: library widget %s missing sql", w.ID)
		}
		if _, exists := seen[w.ID]; exists {
			return fmt.Errorf("dashboard: library duplicates widget id %s", w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	return nil
}

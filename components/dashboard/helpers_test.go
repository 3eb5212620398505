package dashboard

import (
	"context"
	"errors"
	"sync"
)

type memoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   int
	saveErr error
	loadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: map[string][]byte{}}
}

func (s *memoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	blob, ok := s.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (s *memoryStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) raw(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[key]
}

var errStoreDown = errors.New("store down")

type recordingHook struct {
	mu     sync.Mutex
	events []WidgetEvent
	err    error
}

func (h *recordingHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHook) reasons() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Reason
	}
	return out
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func widget(id string) WidgetConfig {
	return WidgetConfig{
		ID:        id,
		Title:     "Widget " + id,
		ChartType: ChartBar,
		SQL:       "SELECT 1",
		Data:      []Row{{"Category": "A", "Value": 1}},
		Columns:   []string{"Category", "Value"},
		ColSpan:   2,
		RowSpan:   1,
	}
}

func ids(widgets []WidgetConfig) []string {
	return widgetOrder(widgets)
}

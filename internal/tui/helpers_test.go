package tui

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/config"
)

// fakeCatalog is an in-memory catalog.Catalog that records calls.
type fakeCatalog struct {
	mu             sync.Mutex
	models         []catalog.Model
	skus           []catalog.SKU
	createdModels  []catalog.NewModel
	createdSKUs    []catalog.NewSKU
	byKey          map[string]catalog.Model
	createModelErr error
}

func newFakeCatalog(names ...string) *fakeCatalog {
	fc := &fakeCatalog{byKey: map[string]catalog.Model{}}
	for _, n := range names {
		fc.models = append(fc.models, catalog.Model{ID: uuid.NewString(), Name: n})
	}
	return fc
}

func (f *fakeCatalog) ListModels(_ context.Context, q catalog.ModelQuery) (catalog.ModelPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hits []catalog.Model
	needle := strings.ToLower(q.Search)
	for _, m := range f.models {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			hits = append(hits, m)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Name < hits[j].Name })
	total := len(hits)
	start := min(q.Offset, total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return catalog.ModelPage{Models: hits[start:end], Total: total, Offset: start}, nil
}

func (f *fakeCatalog) CreateModel(_ context.Context, in catalog.NewModel) (catalog.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdModels = append(f.createdModels, in)
	if f.createModelErr != nil {
		return catalog.Model{}, f.createModelErr
	}
	if m, ok := f.byKey[in.RequestKey]; ok && in.RequestKey != "" {
		return m, nil
	}
	m := catalog.Model{ID: uuid.NewString(), Name: in.Name, Brand: in.Brand, PartNumber: in.PartNumber, Category: in.Category}
	f.models = append(f.models, m)
	f.byKey[in.RequestKey] = m
	return m, nil
}

func (f *fakeCatalog) ListSKUs(_ context.Context, limit int) ([]catalog.SKU, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.SKU(nil), f.skus...), nil
}

func (f *fakeCatalog) CreateSKU(_ context.Context, in catalog.NewSKU) (catalog.SKU, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdSKUs = append(f.createdSKUs, in)
	s := catalog.SKU{ID: uuid.NewString(), Code: in.Code, Title: in.Title, ModelName: in.ModelName, Condition: in.Condition, CostCents: in.CostCents}
	f.skus = append([]catalog.SKU{s}, f.skus...)
	return s, nil
}

func (f *fakeCatalog) modelCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createdModels)
}

func newTestApp(t *testing.T, fc *fakeCatalog) *App {
	t.Helper()
	cfg := config.Config{UI: config.UIConfig{PageSize: 5, Dialogs: config.DefaultDialogs()}}
	a := New(context.Background(), cfg, fc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends one key and returns the command without running it.
func press(a *App, k string) tea.Cmd {
	_, cmd := a.Update(keyMsg(k))
	return cmd
}

// run executes cmd and feeds every resulting message back into the app until
// nothing is left to do.
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 100, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, next)
	}
}

func mouse(a *App, action tea.MouseAction, x, y int) {
	a.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func topDialog(t *testing.T, a *App) dialog {
	t.Helper()
	top, ok := a.stack.Top()
	require.True(t, ok, "no dialog open")
	d, ok := a.dialogs[top.ID]
	require.True(t, ok)
	return d
}

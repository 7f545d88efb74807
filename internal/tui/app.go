// Package tui is the terminal front end: a SKU list with a cascade of
// draggable, resizable dialogs for creating SKUs and picking parts models.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/config"
	"github.com/jask/baydesk/internal/geometry"
	"github.com/jask/baydesk/internal/modal"
)

const recentSKUs = 100

// App ties the catalog, the dialog stack and the views together.
type App struct {
	ctx     context.Context
	catalog catalog.Catalog
	cfg     config.Config
	log     *slog.Logger
	keys    *KeyRegistry

	stack   *modal.Stack
	dialogs map[modal.ID]dialog
	pointer *pointerGesture

	skus      []catalog.SKU
	skuCursor int
	width     int
	height    int
	status    string
	statusErr bool
}

func New(ctx context.Context, cfg config.Config, cat catalog.Catalog, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "tui"))
	return &App{
		ctx:     ctx,
		catalog: cat,
		cfg:     cfg,
		log:     logger,
		keys:    NewKeyRegistry(),
		stack:   modal.New(logger),
		dialogs: make(map[modal.ID]dialog),
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadSKUs()
}

func (a *App) loadSKUs() tea.Cmd {
	return func() tea.Msg {
		list, err := a.catalog.ListSKUs(a.ctx, recentSKUs)
		if err != nil {
			return errMsg{fmt.Errorf("load skus: %w", err)}
		}
		return skusMsg(list)
	}
}

func (a *App) loadModels(b *modelBrowser) tea.Cmd {
	b.seq++
	b.loading = true
	owner, seq := b.id, b.seq
	q := catalog.ModelQuery{Search: strings.TrimSpace(b.search.Value()), Offset: b.offset, Limit: a.pageSize()}
	return func() tea.Msg {
		page, err := a.catalog.ListModels(a.ctx, q)
		return modelsMsg{owner: owner, seq: seq, page: page, err: err}
	}
}

func (a *App) pageSize() int {
	if a.cfg.UI.PageSize > 0 {
		return a.cfg.UI.PageSize
	}
	return 20
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.stack.SetViewport(geometry.Viewport{Width: m.Width, Height: m.Height})
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(m)
	case tea.MouseMsg:
		return a, a.handleMouse(m)
	case skusMsg:
		a.skus = m
		if a.skuCursor >= len(a.skus) {
			a.skuCursor = max(0, len(a.skus)-1)
		}
		return a, nil
	case modelsMsg:
		b, ok := a.dialogs[m.owner].(*modelBrowser)
		if !ok || m.seq != b.seq {
			a.log.Debug("stale model page dropped", slog.String("owner", string(m.owner)), slog.Int("seq", m.seq))
			return a, nil
		}
		b.apply(m)
		return a, nil
	case modelCreatedMsg:
		return a, a.modelCreated(m)
	case skuCreatedMsg:
		return a, a.skuCreated(m)
	case errMsg:
		a.setError(m.error)
		return a, nil
	case statusMsg:
		a.setStatus(string(m))
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if top, ok := a.stack.Top(); ok {
		d, ok := a.dialogs[top.ID]
		if !ok {
			return nil
		}
		var act Action
		if b := a.keys.Lookup(msg, d.scope()); b != nil {
			act = b.Action
		}
		switch act {
		case actionQuit:
			return tea.Quit
		case actionClose:
			if a.pointer != nil {
				a.cancelGesture()
				return nil
			}
			a.closeDialog(top.ID)
			return nil
		}
		return d.handleKey(a, act, msg)
	}

	b := a.keys.Lookup(msg, scopeMain)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionQuit:
		return tea.Quit
	case actionNewSKU:
		return a.openSKUForm()
	case actionReload:
		a.setStatus("reloading…")
		return a.loadSKUs()
	case actionNavigate:
		switch msg.String() {
		case "j", "down":
			if a.skuCursor < len(a.skus)-1 {
				a.skuCursor++
			}
		case "k", "up":
			if a.skuCursor > 0 {
				a.skuCursor--
			}
		}
	}
	return nil
}

func (a *App) openSKUForm() tea.Cmd {
	f := newSKUForm()
	id, err := a.stack.Open("", modal.Options{
		Title:    "New SKU",
		Bounds:   a.cfg.UI.Dialogs.SKUForm,
		OnAccept: f.accept,
		OnClose:  a.forget,
	})
	if err != nil {
		a.setError(err)
		return nil
	}
	f.id = id
	a.dialogs[id] = f
	return nil
}

func (a *App) openModelBrowser(parent modal.ID, query string) tea.Cmd {
	b := newModelBrowser(query)
	id, err := a.stack.Open(parent, modal.Options{
		Title:   "Models",
		Bounds:  a.cfg.UI.Dialogs.ModelBrowser,
		OnClose: a.forget,
	})
	if err != nil {
		a.setError(err)
		return nil
	}
	b.id = id
	a.dialogs[id] = b
	return a.loadModels(b)
}

func (a *App) openModelForm(parent modal.ID, name string) tea.Cmd {
	f := newModelForm(name)
	id, err := a.stack.Open(parent, modal.Options{
		Title:   "Add model",
		Bounds:  a.cfg.UI.Dialogs.ModelForm,
		OnClose: a.forget,
	})
	if err != nil {
		a.setError(err)
		return nil
	}
	f.id = id
	a.dialogs[id] = f
	return nil
}

// closeDialog asks the stack to close id; descendants go with it.
func (a *App) closeDialog(id modal.ID) {
	a.stack.Close(id)
}

// forget drops the view state of a dialog the stack has closed.
func (a *App) forget(id modal.ID) {
	delete(a.dialogs, id)
	if a.pointer != nil && a.pointer.id == id {
		a.pointer = nil
	}
}

func (a *App) relay(child modal.ID, m catalog.Model) {
	if a.stack.Relay(child, modal.Entity{Key: m.ID, Value: m}) {
		a.setStatus("model " + m.Name + " selected")
	}
}

func (a *App) submitModel(f *modelForm) tea.Cmd {
	in, err := f.payload()
	if err != nil {
		f.form.showError(err)
		return nil
	}
	t, ok := a.stack.BeginSubmit(f.id)
	if !ok {
		return nil
	}
	f.form.clearErrors()
	return func() tea.Msg {
		m, err := a.catalog.CreateModel(a.ctx, in)
		return modelCreatedMsg{ticket: t, model: m, err: err}
	}
}

func (a *App) modelCreated(m modelCreatedMsg) tea.Cmd {
	if !a.stack.Settle(m.ticket) {
		return nil
	}
	f, ok := a.dialogs[m.ticket.Owner()].(*modelForm)
	if !ok {
		return nil
	}
	if m.err != nil {
		a.log.Warn("create model failed", slog.Any("err", m.err))
		f.form.showError(m.err)
		return nil
	}
	if a.stack.Relay(f.id, modal.Entity{Key: m.model.ID, Value: m.model}) {
		a.setStatus("model " + m.model.Name + " created")
	}
	return nil
}

func (a *App) submitSKU(f *skuForm) tea.Cmd {
	in, err := f.payload()
	if err != nil {
		f.form.showError(err)
		return nil
	}
	t, ok := a.stack.BeginSubmit(f.id)
	if !ok {
		return nil
	}
	f.form.clearErrors()
	f.note = ""
	return func() tea.Msg {
		s, err := a.catalog.CreateSKU(a.ctx, in)
		return skuCreatedMsg{ticket: t, sku: s, err: err}
	}
}

func (a *App) skuCreated(m skuCreatedMsg) tea.Cmd {
	if !a.stack.Settle(m.ticket) {
		return nil
	}
	f, ok := a.dialogs[m.ticket.Owner()].(*skuForm)
	if !ok {
		return nil
	}
	if m.err != nil {
		a.log.Warn("create sku failed", slog.Any("err", m.err))
		f.form.showError(m.err)
		return nil
	}
	a.closeDialog(f.id)
	a.setStatus("SKU " + m.sku.Code + " created")
	return a.loadSKUs()
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	if err == nil {
		return
	}
	a.log.Error("ui error", slog.Any("err", err))
	a.status = err.Error()
	a.statusErr = true
}

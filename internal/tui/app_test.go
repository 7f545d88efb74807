package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/modal"
)

// openCascade opens SKU form, model browser and add-model form, returning their IDs.
func openCascade(t *testing.T, a *App) (root, browser, form modal.ID) {
	t.Helper()
	run(t, a, press(a, "n"))
	top, _ := a.stack.Top()
	root = top.ID

	run(t, a, press(a, "ctrl+o"))
	top, _ = a.stack.Top()
	browser = top.ID
	require.IsType(t, &modelBrowser{}, a.dialogs[browser])

	run(t, a, press(a, "ctrl+n"))
	top, _ = a.stack.Top()
	form = top.ID
	require.IsType(t, &modelForm{}, a.dialogs[form])
	return root, browser, form
}

func TestCreatedModelLandsInRootForm(t *testing.T) {
	fc := newFakeCatalog("Bolt", "Sprocket")
	a := newTestApp(t, fc)
	root, browser, form := openCascade(t, a)

	run(t, a, press(a, "Widget-7"))
	run(t, a, press(a, "ctrl+s"))

	require.True(t, a.stack.IsOpen(root))
	assert.False(t, a.stack.IsOpen(browser))
	assert.False(t, a.stack.IsOpen(form))
	assert.Equal(t, 1, a.stack.Len())

	sku := a.dialogs[root].(*skuForm)
	assert.Equal(t, "Widget-7", sku.form.value("model_name"))
	assert.Equal(t, "", sku.form.value("code"), "only the model field changes")
	assert.Equal(t, 1, fc.modelCalls())
	assert.NotContains(t, a.dialogs, browser)
	assert.NotContains(t, a.dialogs, form)
}

func TestDoubleSubmitSendsOneRequest(t *testing.T) {
	fc := newFakeCatalog()
	a := newTestApp(t, fc)
	_, _, form := openCascade(t, a)
	run(t, a, press(a, "Widget-7"))

	first := press(a, "ctrl+s")
	require.NotNil(t, first)
	assert.True(t, a.stack.Pending(form))
	assert.Nil(t, press(a, "ctrl+s"))
	assert.Nil(t, press(a, "enter"))

	run(t, a, first)
	assert.Equal(t, 1, fc.modelCalls())
	assert.Len(t, fc.models, 1)
}

func TestClosingFormWhileCreatingDropsResponse(t *testing.T) {
	fc := newFakeCatalog()
	a := newTestApp(t, fc)
	root, browser, form := openCascade(t, a)
	run(t, a, press(a, "Widget-7"))

	inflight := press(a, "ctrl+s")
	require.NotNil(t, inflight)
	press(a, "esc")
	require.False(t, a.stack.IsOpen(form))

	run(t, a, inflight)
	assert.True(t, a.stack.IsOpen(browser), "late response must not cascade-close")
	assert.Equal(t, "", a.dialogs[root].(*skuForm).form.value("model_name"))
}

func TestCreateFailureStaysInline(t *testing.T) {
	fc := newFakeCatalog()
	fc.createModelErr = catalog.FieldError("name", "already exists")
	a := newTestApp(t, fc)
	_, _, form := openCascade(t, a)
	run(t, a, press(a, "Widget-7"))

	run(t, a, press(a, "ctrl+s"))
	require.True(t, a.stack.IsOpen(form))
	assert.False(t, a.stack.Pending(form), "confirm is enabled again")
	mf := a.dialogs[form].(*modelForm)
	assert.Equal(t, "already exists", mf.form.errs["name"])

	fc.createModelErr = errors.New("backend unavailable")
	run(t, a, press(a, "ctrl+s"))
	assert.Equal(t, "backend unavailable", mf.form.err)

	fc.createModelErr = nil
	run(t, a, press(a, "ctrl+s"))
	assert.False(t, a.stack.IsOpen(form))
	require.Len(t, fc.createdModels, 3)
	assert.Equal(t, fc.createdModels[0].RequestKey, fc.createdModels[2].RequestKey)
}

func TestModelFormValidatesBeforeSending(t *testing.T) {
	fc := newFakeCatalog()
	a := newTestApp(t, fc)
	_, _, form := openCascade(t, a)

	assert.Nil(t, press(a, "ctrl+s"))
	assert.Zero(t, fc.modelCalls())
	assert.NotEmpty(t, a.dialogs[form].(*modelForm).form.errs["name"])
	assert.False(t, a.stack.Pending(form))
}

func TestBrowserRelaysHighlightedModel(t *testing.T) {
	fc := newFakeCatalog("Bolt", "Sprocket", "Widget-12")
	a := newTestApp(t, fc)
	run(t, a, press(a, "n"))
	root, _ := a.stack.Top()
	run(t, a, press(a, "ctrl+o"))

	press(a, "down")
	run(t, a, press(a, "enter"))

	assert.Equal(t, 1, a.stack.Len())
	assert.Equal(t, "Sprocket", a.dialogs[root.ID].(*skuForm).form.value("model_name"))
}

func TestBrowserDropsStalePages(t *testing.T) {
	fc := newFakeCatalog("Washer", "Widget-7", "Bolt")
	a := newTestApp(t, fc)
	run(t, a, press(a, "n"))
	run(t, a, press(a, "ctrl+o"))
	b := topDialog(t, a).(*modelBrowser)
	require.Len(t, b.models, 3)

	older := press(a, "w")
	newer := press(a, "i")
	run(t, a, newer)
	run(t, a, older)

	require.Len(t, b.models, 1)
	assert.Equal(t, "Widget-7", b.models[0].Name)
	assert.Equal(t, "wi", b.search.Value())
}

func TestBrowserPaging(t *testing.T) {
	var names []string
	for _, c := range "abcdefghijkl" {
		names = append(names, "model-"+string(c))
	}
	fc := newFakeCatalog(names...)
	a := newTestApp(t, fc)
	run(t, a, press(a, "n"))
	run(t, a, press(a, "ctrl+o"))
	b := topDialog(t, a).(*modelBrowser)
	require.Len(t, b.models, 5)
	assert.Equal(t, 12, b.total)

	run(t, a, press(a, "pgdown"))
	assert.Equal(t, 5, b.offset)
	assert.Equal(t, "model-f", b.models[0].Name)

	run(t, a, press(a, "pgdown"))
	run(t, a, press(a, "pgdown"))
	assert.Equal(t, 10, b.offset)
	assert.Len(t, b.models, 2)

	run(t, a, press(a, "pgup"))
	assert.Equal(t, 5, b.offset)
}

func TestEscClosesOnlyTopDialog(t *testing.T) {
	a := newTestApp(t, newFakeCatalog())
	root, browser, _ := openCascade(t, a)

	press(a, "esc")
	assert.Equal(t, 2, a.stack.Len())
	press(a, "esc")
	assert.False(t, a.stack.IsOpen(browser))
	assert.True(t, a.stack.IsOpen(root))
	press(a, "esc")
	assert.Zero(t, a.stack.Len())
	assert.Empty(t, a.dialogs)
}

func TestQuitKeyTypesInsideDialogs(t *testing.T) {
	a := newTestApp(t, newFakeCatalog())
	run(t, a, press(a, "n"))
	cmd := press(a, "q")
	assert.Nil(t, cmd)
	assert.Equal(t, "q", topDialog(t, a).(*skuForm).form.value("code"))
}

func TestCreateSKU(t *testing.T) {
	fc := newFakeCatalog()
	a := newTestApp(t, fc)
	run(t, a, press(a, "n"))
	run(t, a, press(a, "w-1"))
	press(a, "tab")
	run(t, a, press(a, "Widget board"))
	press(a, "tab")
	press(a, "tab")
	run(t, a, press(a, "used"))
	press(a, "tab")
	run(t, a, press(a, "$12.50"))

	run(t, a, press(a, "ctrl+s"))
	assert.Zero(t, a.stack.Len())
	require.Len(t, a.skus, 1)
	assert.Equal(t, "W-1", a.skus[0].Code)
	assert.EqualValues(t, 1250, a.skus[0].CostCents)
	assert.Contains(t, a.status, "W-1")
}

func TestCreateSKURejectsBadCost(t *testing.T) {
	fc := newFakeCatalog()
	a := newTestApp(t, fc)
	run(t, a, press(a, "n"))
	f := topDialog(t, a).(*skuForm)
	f.form.setValue("code", "x-1")
	f.form.setValue("title", "Thing")
	f.form.setValue("cost", "12.345")

	assert.Nil(t, press(a, "ctrl+s"))
	assert.NotEmpty(t, f.form.errs["cost"])
	assert.Empty(t, fc.createdSKUs)
}

func TestReopenStartsFresh(t *testing.T) {
	a := newTestApp(t, newFakeCatalog())
	run(t, a, press(a, "n"))
	first := topDialog(t, a).(*skuForm)
	run(t, a, press(a, "abc"))
	press(a, "esc")

	run(t, a, press(a, "n"))
	second := topDialog(t, a).(*skuForm)
	assert.NotSame(t, first, second)
	assert.Equal(t, "", second.form.value("code"))
	assert.NotEqual(t, first.requestKey, second.requestKey)
}

func TestViewFillsScreen(t *testing.T) {
	fc := newFakeCatalog("Widget-7")
	fc.skus = []catalog.SKU{{Code: "W-1", Title: "Widget board", ModelName: "Widget-7", CostCents: 999}}
	a := newTestApp(t, fc)
	run(t, a, a.Init())

	out := a.View()
	assert.Len(t, strings.Split(out, "\n"), 40)
	assert.Contains(t, out, "W-1")
	assert.Contains(t, out, "$9.99")

	openCascade(t, a)
	out = a.View()
	assert.Len(t, strings.Split(out, "\n"), 40)
	assert.Contains(t, out, "New SKU")
	assert.Contains(t, out, "Models")
	assert.Contains(t, out, "Add model")
}

func TestStatusShowsLoadErrors(t *testing.T) {
	a := newTestApp(t, newFakeCatalog())
	a.Update(errMsg{errors.New("load skus: connection refused")})
	assert.True(t, a.statusErr)
	assert.Contains(t, a.View(), "connection refused")

	_, cmd := a.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

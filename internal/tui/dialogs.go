package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/modal"
)

// dialog is the content of one open panel. The modal stack owns the panel
// itself; the App keeps dialogs keyed by the stack's IDs.
type dialog interface {
	scope() string
	handleKey(a *App, act Action, msg tea.KeyMsg) tea.Cmd
	body(a *App, width int) string
}

var skuFields = []formField{
	{Key: "code", Label: "Code", Placeholder: "TP-X220-KB", CharLimit: 40},
	{Key: "title", Label: "Title", Placeholder: "ThinkPad X220 keyboard", CharLimit: 120},
	{Key: "model_name", Label: "Model", Placeholder: "ctrl+o to browse"},
	{Key: "condition", Label: "Condition", Placeholder: "new | used | refurbished | for parts"},
	{Key: "cost", Label: "Cost", Placeholder: "0.00", CharLimit: 16},
}

var modelFields = []formField{
	{Key: "name", Label: "Name", CharLimit: 120},
	{Key: "brand", Label: "Brand", CharLimit: 80},
	{Key: "part_number", Label: "Part number", CharLimit: 80},
	{Key: "category", Label: "Category", CharLimit: 80},
}

// skuForm is the root of the cascade. It accepts models relayed from below.
type skuForm struct {
	id         modal.ID
	form       fieldForm
	requestKey string
	note       string
}

func newSKUForm() *skuForm {
	return &skuForm{form: newFieldForm(skuFields), requestKey: uuid.NewString()}
}

func (f *skuForm) scope() string { return scopeSKUForm }

func (f *skuForm) accept(e modal.Entity) {
	switch v := e.Value.(type) {
	case catalog.Model:
		f.form.setValue("model_name", v.Name)
		f.note = "model set to " + v.Name
	case string:
		f.form.setValue("model_name", v)
		f.note = "model set to " + v
	}
}

func (f *skuForm) payload() (catalog.NewSKU, error) {
	cents, err := catalog.ParseCents(f.form.value("cost"))
	if err != nil {
		return catalog.NewSKU{}, catalog.FieldError("cost", err.Error())
	}
	in := catalog.NewSKU{
		Code:       f.form.value("code"),
		Title:      f.form.value("title"),
		ModelName:  f.form.value("model_name"),
		Condition:  strings.ToLower(f.form.value("condition")),
		CostCents:  cents,
		RequestKey: f.requestKey,
	}.Normalize()
	return in, catalog.ValidateNewSKU(in)
}

func (f *skuForm) handleKey(a *App, act Action, msg tea.KeyMsg) tea.Cmd {
	switch act {
	case actionBrowse:
		return a.openModelBrowser(f.id, f.form.value("model_name"))
	case actionSubmit:
		return a.submitSKU(f)
	case actionNextField:
		f.form.move(1)
		return nil
	case actionPrevField:
		f.form.move(-1)
		return nil
	}
	return f.form.update(msg)
}

func (f *skuForm) body(a *App, width int) string {
	var b strings.Builder
	b.WriteString(f.form.view(width))
	b.WriteString("\n\n")
	switch {
	case a.stack.Pending(f.id):
		b.WriteString(pendingStyle.Render("saving…"))
	case f.note != "":
		b.WriteString(infoStyle.Render(f.note))
	default:
		b.WriteString(dimStyle.Render("ctrl+s save · ctrl+o models · esc close"))
	}
	return b.String()
}

// modelBrowser lists models page by page. It never accepts relays itself, so
// a model created beneath it passes straight through to the SKU form.
type modelBrowser struct {
	id      modal.ID
	search  textinput.Model
	models  []catalog.Model
	total   int
	offset  int
	cursor  int
	seq     int
	loading bool
	err     string
}

func newModelBrowser(query string) *modelBrowser {
	inp := newInput("search models")
	inp.Prompt = "/ "
	inp.SetValue(query)
	inp.Focus()
	return &modelBrowser{search: inp}
}

func (b *modelBrowser) scope() string { return scopeModelBrowser }

func (b *modelBrowser) handleKey(a *App, act Action, msg tea.KeyMsg) tea.Cmd {
	switch act {
	case actionUp:
		if b.cursor > 0 {
			b.cursor--
		}
		return nil
	case actionDown:
		if b.cursor < len(b.models)-1 {
			b.cursor++
		}
		return nil
	case actionPageNext:
		if b.offset+len(b.models) >= b.total {
			return nil
		}
		b.offset += a.pageSize()
		b.cursor = 0
		return a.loadModels(b)
	case actionPagePrev:
		if b.offset == 0 {
			return nil
		}
		b.offset = max(0, b.offset-a.pageSize())
		b.cursor = 0
		return a.loadModels(b)
	case actionSelect:
		if len(b.models) == 0 {
			return nil
		}
		a.relay(b.id, b.models[b.cursor])
		return nil
	case actionAddModel:
		return a.openModelForm(b.id, b.search.Value())
	case actionNextField, actionPrevField:
		return nil
	}

	before := b.search.Value()
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	if b.search.Value() == before {
		return cmd
	}
	b.offset, b.cursor = 0, 0
	return tea.Batch(cmd, a.loadModels(b))
}

func (b *modelBrowser) apply(m modelsMsg) {
	b.loading = false
	if m.err != nil {
		b.err = m.err.Error()
		return
	}
	b.err = ""
	b.models = m.page.Models
	b.total = m.page.Total
	b.offset = m.page.Offset
	if b.cursor >= len(b.models) {
		b.cursor = max(0, len(b.models)-1)
	}
}

func (b *modelBrowser) body(a *App, width int) string {
	b.search.Width = max(4, width-4)
	lines := []string{b.search.View(), ""}
	switch {
	case b.err != "":
		lines = append(lines, errorStyle.Render(b.err))
	case len(b.models) == 0 && b.loading:
		lines = append(lines, pendingStyle.Render("loading…"))
	case len(b.models) == 0:
		lines = append(lines, dimStyle.Render("no models match; ctrl+n adds one"))
	}
	for i, m := range b.models {
		row := m.Name
		if m.PartNumber != "" {
			row += "  " + dimStyle.Render(m.PartNumber)
		}
		if m.Brand != "" {
			row += "  " + labelStyle.Render(m.Brand)
		}
		row = ansi.Truncate(row, width-2, "…")
		if i == b.cursor {
			lines = append(lines, cursorStyle.Render("› ")+row)
		} else {
			lines = append(lines, "  "+row)
		}
	}
	if b.total > 0 {
		end := b.offset + len(b.models)
		lines = append(lines, "", dimStyle.Render(fmt.Sprintf("%d–%d of %d · pgup/pgdn · enter choose · ctrl+n add", b.offset+1, end, b.total)))
	}
	return strings.Join(lines, "\n")
}

// modelForm creates a model and relays it up the cascade. The request key is
// fixed for the life of the dialog so a retry never creates a second model.
type modelForm struct {
	id         modal.ID
	form       fieldForm
	requestKey string
}

func newModelForm(name string) *modelForm {
	f := &modelForm{form: newFieldForm(modelFields), requestKey: uuid.NewString()}
	f.form.setValue("name", name)
	return f
}

func (f *modelForm) scope() string { return scopeModelForm }

func (f *modelForm) payload() (catalog.NewModel, error) {
	in := catalog.NewModel{
		Name:       f.form.value("name"),
		Brand:      f.form.value("brand"),
		PartNumber: f.form.value("part_number"),
		Category:   f.form.value("category"),
		RequestKey: f.requestKey,
	}.Normalize()
	return in, catalog.ValidateNewModel(in)
}

func (f *modelForm) handleKey(a *App, act Action, msg tea.KeyMsg) tea.Cmd {
	switch act {
	case actionSubmit:
		return a.submitModel(f)
	case actionNextField:
		f.form.move(1)
		return nil
	case actionPrevField:
		f.form.move(-1)
		return nil
	}
	return f.form.update(msg)
}

func (f *modelForm) body(a *App, width int) string {
	var b strings.Builder
	b.WriteString(f.form.view(width))
	b.WriteString("\n\n")
	if a.stack.Pending(f.id) {
		b.WriteString(pendingStyle.Render("creating…"))
	} else {
		b.WriteString(dimStyle.Render("enter create · esc cancel"))
	}
	return b.String()
}

package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/baydesk/internal/catalog"
)

type formField struct {
	Key         string
	Label       string
	Placeholder string
	CharLimit   int
}

// fieldForm is a column of labelled text inputs with per-field error lines.
type fieldForm struct {
	fields []formField
	inputs []textinput.Model
	errs   map[string]string
	err    string
	focus  int
}

func newFieldForm(fields []formField) fieldForm {
	inputs := make([]textinput.Model, 0, len(fields))
	for i, f := range fields {
		inp := newInput(f.Placeholder)
		if f.CharLimit > 0 {
			inp.CharLimit = f.CharLimit
		}
		if i == 0 {
			inp.Focus()
		}
		inputs = append(inputs, inp)
	}
	return fieldForm{fields: fields, inputs: inputs, errs: map[string]string{}}
}

func newInput(placeholder string) textinput.Model {
	inp := textinput.New()
	inp.Prompt = ""
	inp.Placeholder = placeholder
	inp.Cursor.SetMode(cursor.CursorStatic)
	return inp
}

func (f *fieldForm) value(key string) string {
	for i, fd := range f.fields {
		if fd.Key == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

func (f *fieldForm) setValue(key, v string) {
	for i, fd := range f.fields {
		if fd.Key == key {
			f.inputs[i].SetValue(v)
			delete(f.errs, key)
			return
		}
	}
}

func (f *fieldForm) move(dir int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *fieldForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// showError spreads a ValidationError over the fields it names. Anything else
// becomes the form-level message.
func (f *fieldForm) showError(err error) {
	f.errs = map[string]string{}
	f.err = ""
	var verr *catalog.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		for k, v := range verr.Fields {
			if f.has(k) {
				f.errs[k] = v
			} else {
				f.err = verr.Error()
			}
		}
		return
	}
	if err != nil {
		f.err = err.Error()
	}
}

func (f *fieldForm) clearErrors() {
	f.errs = map[string]string{}
	f.err = ""
}

func (f *fieldForm) has(key string) bool {
	for _, fd := range f.fields {
		if fd.Key == key {
			return true
		}
	}
	return false
}

func (f *fieldForm) view(width int) string {
	labelW := 0
	for _, fd := range f.fields {
		if len(fd.Label) > labelW {
			labelW = len(fd.Label)
		}
	}
	inputW := width - labelW - 4
	if inputW < 4 {
		inputW = 4
	}
	var b strings.Builder
	for i, fd := range f.fields {
		f.inputs[i].Width = inputW
		marker := "  "
		if i == f.focus {
			marker = cursorStyle.Render("› ")
		}
		b.WriteString(marker)
		b.WriteString(labelStyle.Render(padCells(fd.Label, labelW)))
		b.WriteString(" ")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := f.errs[fd.Key]; ok {
			b.WriteString(strings.Repeat(" ", labelW+3))
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Action string

// Binding is a bubbles key binding tagged with the action it triggers.
type Binding struct {
	key.Binding
	Action Action
}

// KeyRegistry keeps each scope's bindings in footer order. A scope is the
// main screen or one dialog kind; dialog kinds fall back to scopeDialog.
type KeyRegistry struct {
	scopes map[string][]Binding
}

const (
	scopeMain         = "main"
	scopeDialog       = "dialog"
	scopeSKUForm      = "sku_form"
	scopeModelBrowser = "model_browser"
	scopeModelForm    = "model_form"
)

const (
	actionQuit      Action = "quit"
	actionNewSKU    Action = "new_sku"
	actionReload    Action = "reload"
	actionNavigate  Action = "navigate"
	actionClose     Action = "close"
	actionSubmit    Action = "submit"
	actionBrowse    Action = "browse"
	actionAddModel  Action = "add_model"
	actionSelect    Action = "select"
	actionUp        Action = "up"
	actionDown      Action = "down"
	actionPageNext  Action = "page_next"
	actionPagePrev  Action = "page_prev"
	actionNextField Action = "next_field"
	actionPrevField Action = "prev_field"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{scopes: make(map[string][]Binding)}
	add := func(scope string, act Action, desc string, keys ...string) {
		r.Bind(scope, act, key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], desc)))
	}

	add(scopeMain, actionNewSKU, "new sku", "n")
	add(scopeMain, actionReload, "reload", "r")
	r.Bind(scopeMain, actionNavigate, key.NewBinding(key.WithKeys("j", "k", "up", "down"), key.WithHelp("j/k", "navigate")))
	add(scopeMain, actionQuit, "quit", "q", "ctrl+c")

	// Shared by every dialog; dialog scopes are consulted first.
	add(scopeDialog, actionClose, "close", "esc")
	add(scopeDialog, actionNextField, "next field", "tab")
	add(scopeDialog, actionPrevField, "prev field", "shift+tab")
	add(scopeDialog, actionQuit, "quit", "ctrl+c")

	add(scopeSKUForm, actionBrowse, "browse models", "ctrl+o")
	add(scopeSKUForm, actionSubmit, "save", "ctrl+s")

	add(scopeModelBrowser, actionUp, "up", "up")
	add(scopeModelBrowser, actionDown, "down", "down")
	add(scopeModelBrowser, actionPageNext, "next page", "pgdown")
	add(scopeModelBrowser, actionPagePrev, "prev page", "pgup")
	add(scopeModelBrowser, actionSelect, "choose", "enter")
	add(scopeModelBrowser, actionAddModel, "add model", "ctrl+n")

	add(scopeModelForm, actionSubmit, "create", "ctrl+s", "enter")

	return r
}

// Bind appends b to scope. Keys the scope already uses stay with their first
// binding; a binding left with no keys is dropped.
func (r *KeyRegistry) Bind(scope string, act Action, b key.Binding) {
	free := make([]string, 0, len(b.Keys()))
	for _, k := range b.Keys() {
		if !r.taken(scope, k) && !slices.Contains(free, k) {
			free = append(free, k)
		}
	}
	if len(free) == 0 {
		return
	}
	b.SetKeys(free...)
	r.scopes[scope] = append(r.scopes[scope], Binding{Binding: b, Action: act})
}

func (r *KeyRegistry) taken(scope, k string) bool {
	for _, b := range r.scopes[scope] {
		if slices.Contains(b.Keys(), k) {
			return true
		}
	}
	return false
}

// Lookup resolves msg in scope. Dialog scopes fall back to scopeDialog.
func (r *KeyRegistry) Lookup(msg tea.KeyMsg, scope string) *Binding {
	if r == nil {
		return nil
	}
	search := []string{scope}
	if scope != scopeMain && scope != scopeDialog {
		search = append(search, scopeDialog)
	}
	for _, sc := range search {
		for i := range r.scopes[sc] {
			if key.Matches(msg, r.scopes[sc][i].Binding) {
				return &r.scopes[sc][i]
			}
		}
	}
	return nil
}

// HelpBindings returns the footer bindings of scopes, in the order given.
func (r *KeyRegistry) HelpBindings(scopes ...string) []key.Binding {
	var out []key.Binding
	for _, sc := range scopes {
		for _, b := range r.scopes[sc] {
			out = append(out, b.Binding)
		}
	}
	return out
}

func renderFooter(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, footerKey.Render(h.Key)+" "+footerHelp.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

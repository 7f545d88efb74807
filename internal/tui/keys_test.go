package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFallsBackToDialogScope(t *testing.T) {
	r := NewKeyRegistry()

	b := r.Lookup(keyMsg("esc"), scopeModelForm)
	require.NotNil(t, b)
	assert.Equal(t, actionClose, b.Action)

	b = r.Lookup(keyMsg("enter"), scopeModelForm)
	require.NotNil(t, b)
	assert.Equal(t, actionSubmit, b.Action)

	b = r.Lookup(keyMsg("enter"), scopeModelBrowser)
	require.NotNil(t, b)
	assert.Equal(t, actionSelect, b.Action)

	assert.Nil(t, r.Lookup(keyMsg("q"), scopeSKUForm), "letters belong to the text fields")
	assert.Nil(t, r.Lookup(keyMsg("esc"), scopeMain), "main screen does not see dialog keys")
}

func TestLookupMatchesKeyTypes(t *testing.T) {
	r := NewKeyRegistry()

	b := r.Lookup(tea.KeyMsg{Type: tea.KeyCtrlS}, scopeSKUForm)
	require.NotNil(t, b)
	assert.Equal(t, actionSubmit, b.Action)

	b = r.Lookup(tea.KeyMsg{Type: tea.KeyShiftTab}, scopeModelForm)
	require.NotNil(t, b)
	assert.Equal(t, actionPrevField, b.Action)

	b = r.Lookup(keyMsg("k"), scopeMain)
	require.NotNil(t, b)
	assert.Equal(t, actionNavigate, b.Action)
}

func TestBindKeepsFirstOwnerOfAKey(t *testing.T) {
	r := NewKeyRegistry()
	before := len(r.HelpBindings(scopeMain))

	r.Bind(scopeMain, actionReload, key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "dup")))
	assert.Len(t, r.HelpBindings(scopeMain), before)
	assert.Equal(t, actionNewSKU, r.Lookup(keyMsg("n"), scopeMain).Action)

	r.Bind(scopeMain, actionReload, key.NewBinding(key.WithKeys("n", "R"), key.WithHelp("R", "reload")))
	b := r.Lookup(keyMsg("R"), scopeMain)
	require.NotNil(t, b)
	assert.Equal(t, []string{"R"}, b.Keys())
}

func TestHelpBindingsOrder(t *testing.T) {
	r := NewKeyRegistry()
	help := r.HelpBindings(scopeModelForm, scopeDialog)
	require.NotEmpty(t, help)
	assert.Equal(t, "ctrl+s", help[0].Help().Key)
	assert.Equal(t, "esc", help[1].Help().Key)
	assert.Contains(t, renderFooter(help), "create")
	assert.Contains(t, renderFooter(r.HelpBindings(scopeMain)), "j/k")
}

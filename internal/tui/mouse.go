package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/baydesk/internal/geometry"
	"github.com/jask/baydesk/internal/modal"
)

// pointerGesture is the drag or resize the left button is holding.
type pointerGesture struct {
	id   modal.ID
	kind geometry.Gesture
}

func (a *App) handleMouse(m tea.MouseMsg) tea.Cmd {
	switch m.Action {
	case tea.MouseActionPress:
		switch m.Button {
		case tea.MouseButtonLeft:
			a.mousePress(m.X, m.Y)
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			a.mouseWheel(m.Button == tea.MouseButtonWheelDown)
		}
	case tea.MouseActionMotion:
		a.mouseMotion(m.X, m.Y)
	case tea.MouseActionRelease:
		a.mouseRelease()
	}
	return nil
}

// mousePress only reaches the top panel. Everything outside it is backdrop,
// and a backdrop click asks the stack to close the top panel.
func (a *App) mousePress(x, y int) {
	if a.pointer != nil {
		a.mouseRelease()
	}
	top, ok := a.stack.Top()
	if !ok {
		return
	}
	region, handle := top.Surface.RegionAt(x, y)
	switch region {
	case geometry.RegionOutside:
		a.log.Debug("backdrop click", slog.String("id", string(top.ID)))
		a.closeDialog(top.ID)
	case geometry.RegionResize:
		top.Surface.BeginResize(handle, x, y)
		a.pointer = &pointerGesture{id: top.ID, kind: geometry.GestureResize}
	case geometry.RegionDragHandle:
		top.Surface.BeginDrag(x, y)
		a.pointer = &pointerGesture{id: top.ID, kind: geometry.GestureDrag}
	}
}

func (a *App) mouseMotion(x, y int) {
	if a.pointer == nil {
		return
	}
	e, ok := a.stack.Entry(a.pointer.id)
	if !ok {
		a.pointer = nil
		return
	}
	switch a.pointer.kind {
	case geometry.GestureDrag:
		e.Surface.DragTo(x, y)
	case geometry.GestureResize:
		e.Surface.ResizeTo(x, y)
	}
}

func (a *App) mouseRelease() {
	if a.pointer == nil {
		return
	}
	g := a.pointer
	a.pointer = nil
	e, ok := a.stack.Entry(g.id)
	if !ok {
		return
	}
	switch g.kind {
	case geometry.GestureDrag:
		e.Surface.EndDrag()
	case geometry.GestureResize:
		e.Surface.EndResize()
	}
	r := e.Surface.Committed()
	a.log.Debug("panel moved", slog.String("id", string(g.id)),
		slog.Int("x", r.X), slog.Int("y", r.Y), slog.Int("w", r.W), slog.Int("h", r.H))
}

func (a *App) cancelGesture() {
	if a.pointer == nil {
		return
	}
	if e, ok := a.stack.Entry(a.pointer.id); ok {
		e.Surface.Cancel()
	}
	a.pointer = nil
}

func (a *App) mouseWheel(down bool) {
	top, ok := a.stack.Top()
	if !ok {
		return
	}
	b, ok := a.dialogs[top.ID].(*modelBrowser)
	if !ok {
		return
	}
	switch {
	case down && b.cursor < len(b.models)-1:
		b.cursor++
	case !down && b.cursor > 0:
		b.cursor--
	}
}

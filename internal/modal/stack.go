// Package modal tracks cascading dialogs: which are open, how they nest, their
// stacking order, and the hand-off of a selected record from a child dialog back
// to the dialog that asked for it.
package modal

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/jask/baydesk/internal/geometry"
)

// ErrParentClosed is returned when opening a child under a dialog that is not open.
var ErrParentClosed = errors.New("modal: parent dialog is not open")

// ID identifies an open dialog.
type ID string

// Entity is a record handed from a child dialog to an ancestor.
type Entity struct {
	Key   string
	Value any
}

// Options configures a dialog when it is opened.
type Options struct {
	Title  string
	Bounds geometry.Config
	// OnAccept receives entities relayed from descendants. Dialogs without it
	// are skipped by Relay.
	OnAccept func(Entity)
	OnClose  func(ID)
}

// Entry is one open dialog.
type Entry struct {
	ID      ID
	Parent  ID
	Level   int
	Z       int
	Title   string
	Surface *geometry.Surface

	children   []ID
	onAccept   func(Entity)
	onClose    func(ID)
	pending    bool
	generation uint64
}

// Stack is the dialog tree. Like the surfaces it holds, it belongs to the UI
// event loop and is not safe for concurrent use.
type Stack struct {
	entries map[ID]*Entry
	roots   []ID
	nextZ   int
	nextGen uint64
	vp      geometry.Viewport
	log     *slog.Logger
}

func New(logger *slog.Logger) *Stack {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stack{
		entries: make(map[ID]*Entry),
		log:     logger.With(slog.String("component", "modal")),
	}
}

// SetViewport updates the viewport of every open surface and of surfaces opened later.
func (s *Stack) SetViewport(vp geometry.Viewport) {
	s.vp = vp
	for _, e := range s.entries {
		e.Surface.SetViewport(vp)
	}
}

// Open opens a dialog under parent, or a root dialog when parent is empty.
// The surface always starts from the configured defaults.
func (s *Stack) Open(parent ID, opts Options) (ID, error) {
	surface, err := geometry.NewSurface(opts.Bounds, s.vp)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", opts.Title, err)
	}
	level := 0
	var p *Entry
	if parent != "" {
		var ok bool
		if p, ok = s.entries[parent]; !ok {
			return "", fmt.Errorf("open %q under %s: %w", opts.Title, parent, ErrParentClosed)
		}
		level = p.Level + 1
	}

	s.nextZ++
	s.nextGen++
	e := &Entry{
		ID:         ID(uuid.NewString()),
		Parent:     parent,
		Level:      level,
		Z:          s.nextZ,
		Title:      opts.Title,
		Surface:    surface,
		onAccept:   opts.OnAccept,
		onClose:    opts.OnClose,
		generation: s.nextGen,
	}
	s.entries[e.ID] = e
	if p != nil {
		p.children = append(p.children, e.ID)
	} else {
		s.roots = append(s.roots, e.ID)
	}
	s.log.Debug("dialog opened", slog.String("id", string(e.ID)), slog.String("title", e.Title), slog.Int("level", level))
	return e.ID, nil
}

// Close closes id and every dialog opened beneath it, deepest first.
// It reports whether id was open.
func (s *Stack) Close(id ID) bool {
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	for len(e.children) > 0 {
		s.Close(e.children[len(e.children)-1])
	}
	delete(s.entries, id)
	if e.Parent != "" {
		if p, ok := s.entries[e.Parent]; ok {
			p.children = removeID(p.children, id)
		}
	} else {
		s.roots = removeID(s.roots, id)
	}
	s.log.Debug("dialog closed", slog.String("id", string(id)), slog.String("title", e.Title))
	if e.onClose != nil {
		e.onClose(id)
	}
	return true
}

// CloseAll closes every open dialog.
func (s *Stack) CloseAll() {
	for len(s.roots) > 0 {
		s.Close(s.roots[len(s.roots)-1])
	}
}

// IsOpen reports whether id is open.
func (s *Stack) IsOpen(id ID) bool {
	_, ok := s.entries[id]
	return ok
}

// Entry returns the open dialog id.
func (s *Stack) Entry(id ID) (*Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Parent returns the parent of id. Root dialogs have no parent.
func (s *Stack) Parent(id ID) (ID, bool) {
	e, ok := s.entries[id]
	if !ok || e.Parent == "" {
		return "", false
	}
	return e.Parent, true
}

// Children returns the open children of id in opening order.
func (s *Stack) Children(id ID) []ID {
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	return append([]ID(nil), e.children...)
}

// Len returns the number of open dialogs.
func (s *Stack) Len() int { return len(s.entries) }

// Ordered returns open dialogs from bottom to top.
func (s *Stack) Ordered() []*Entry {
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Top returns the most recently opened dialog that is still open.
func (s *Stack) Top() (*Entry, bool) {
	var top *Entry
	for _, e := range s.entries {
		if top == nil || e.Z > top.Z {
			top = e
		}
	}
	return top, top != nil
}

func removeID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

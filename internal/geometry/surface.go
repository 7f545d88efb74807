package geometry

// Handle identifies the border a resize gesture grabbed. Corners combine two edges.
type Handle uint8

const (
	Top Handle = 1 << iota
	Bottom
	Left
	Right

	TopLeft     = Top | Left
	TopRight    = Top | Right
	BottomLeft  = Bottom | Left
	BottomRight = Bottom | Right
)

// Valid reports whether h is one of the eight edge or corner handles.
func (h Handle) Valid() bool {
	if h == 0 || h&^(Top|Bottom|Left|Right) != 0 {
		return false
	}
	return h&(Top|Bottom) != Top|Bottom && h&(Left|Right) != Left|Right
}

func (h Handle) String() string {
	switch h {
	case Top:
		return "n"
	case Bottom:
		return "s"
	case Left:
		return "w"
	case Right:
		return "e"
	case TopLeft:
		return "nw"
	case TopRight:
		return "ne"
	case BottomLeft:
		return "sw"
	case BottomRight:
		return "se"
	}
	return "invalid"
}

// Region classifies a cell relative to a panel for hit testing.
type Region int

const (
	RegionOutside Region = iota
	RegionBody
	RegionDragHandle
	RegionResize
)

// Gesture is the pointer interaction currently applied to a surface.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureDrag
	GestureResize
)

// Surface holds the geometry of one panel. It is not safe for concurrent use;
// the UI event loop is its only caller.
type Surface struct {
	cfg       Config
	vp        Viewport
	committed Rect
	live      Rect

	gesture  Gesture
	handle   Handle
	startX   int
	startY   int
	snapshot Rect
}

// NewSurface validates cfg and returns a surface placed at its defaults.
func NewSurface(cfg Config, vp Viewport) (*Surface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Surface{cfg: cfg, vp: vp}
	s.Reset()
	return s, nil
}

// Reset puts the panel back at its configured defaults, fitted to the
// viewport, and drops any gesture.
func (s *Surface) Reset() {
	s.committed = s.fit(s.cfg.Defaults())
	s.live = s.committed
	s.gesture = GestureNone
	s.handle = 0
}

// Config returns the limits the surface was built with.
func (s *Surface) Config() Config { return s.cfg }

// Committed returns the geometry as of the last finished gesture.
func (s *Surface) Committed() Rect { return s.committed }

// Live returns the geometry to draw, including any gesture in progress.
func (s *Surface) Live() Rect { return s.live }

// Gesture returns the active gesture kind.
func (s *Surface) Gesture() Gesture { return s.gesture }

// Viewport returns the viewport used for clamping.
func (s *Surface) Viewport() Viewport { return s.vp }

// SetViewport records a new viewport. Geometry is re-clamped on the next commit.
func (s *Surface) SetViewport(vp Viewport) { s.vp = vp }

// RegionAt reports which part of the live panel the cell (px, py) falls on.
// Border cells resize, the first row inside the top border drags.
func (s *Surface) RegionAt(px, py int) (Region, Handle) {
	r := s.live
	if !r.Contains(px, py) {
		return RegionOutside, 0
	}
	var h Handle
	if py == r.Y {
		h |= Top
	} else if py == r.Bottom()-1 {
		h |= Bottom
	}
	if px == r.X {
		h |= Left
	} else if px == r.Right()-1 {
		h |= Right
	}
	if h != 0 {
		return RegionResize, h
	}
	if py == r.Y+1 {
		return RegionDragHandle, 0
	}
	return RegionBody, 0
}

// BeginDrag starts moving the panel with the pointer at (px, py).
func (s *Surface) BeginDrag(px, py int) {
	s.gesture = GestureDrag
	s.startX, s.startY = px, py
	s.snapshot = s.live
}

// DragTo moves the live panel so the grabbed cell follows the pointer.
func (s *Surface) DragTo(px, py int) {
	if s.gesture != GestureDrag {
		return
	}
	next := s.snapshot
	next.X += px - s.startX
	next.Y += py - s.startY
	s.live = clampInto(next, s.vp)
}

// EndDrag commits the dragged position.
func (s *Surface) EndDrag() {
	if s.gesture != GestureDrag {
		return
	}
	s.commit()
}

// BeginResize starts resizing from handle h with the pointer at (px, py).
// Invalid handles are ignored.
func (s *Surface) BeginResize(h Handle, px, py int) {
	if !h.Valid() {
		return
	}
	s.gesture = GestureResize
	s.handle = h
	s.startX, s.startY = px, py
	s.snapshot = s.live
}

// ResizeTo applies the pointer offset since BeginResize to the grabbed edges.
// The edge opposite the handle stays put.
func (s *Surface) ResizeTo(px, py int) {
	if s.gesture != GestureResize {
		return
	}
	dx, dy := px-s.startX, py-s.startY
	snap := s.snapshot
	next := snap

	maxW := s.effectiveMax(s.cfg.MaxWidth, s.cfg.MinWidth, s.vp.Width)
	maxH := s.effectiveMax(s.cfg.MaxHeight, s.cfg.MinHeight, s.vp.Height)

	switch {
	case s.handle&Left != 0:
		right := snap.Right()
		x := max(snap.X+dx, 0)
		next.W = clamp(right-x, s.cfg.MinWidth, maxW)
		next.X = max(right-next.W, 0)
	case s.handle&Right != 0:
		next.W = clamp(snap.W+dx, s.cfg.MinWidth, maxW)
		if s.vp.Width > 0 {
			next.W = clamp(next.W, s.cfg.MinWidth, max(s.cfg.MinWidth, s.vp.Width-snap.X))
		}
	}

	switch {
	case s.handle&Top != 0:
		bottom := snap.Bottom()
		y := max(snap.Y+dy, 0)
		next.H = clamp(bottom-y, s.cfg.MinHeight, maxH)
		next.Y = max(bottom-next.H, 0)
	case s.handle&Bottom != 0:
		next.H = clamp(snap.H+dy, s.cfg.MinHeight, maxH)
		if s.vp.Height > 0 {
			next.H = clamp(next.H, s.cfg.MinHeight, max(s.cfg.MinHeight, s.vp.Height-snap.Y))
		}
	}

	s.live = clampInto(next, s.vp)
}

// EndResize commits both size and position.
func (s *Surface) EndResize() {
	if s.gesture != GestureResize {
		return
	}
	s.commit()
}

// Cancel abandons the active gesture and shows the committed geometry again.
func (s *Surface) Cancel() {
	s.live = s.committed
	s.gesture = GestureNone
	s.handle = 0
}

func (s *Surface) commit() {
	r := s.fit(s.live)
	s.committed = r
	s.live = r
	s.gesture = GestureNone
	s.handle = 0
}

// fit sizes r within the configured bounds and the viewport, then shifts it
// on screen. Only a viewport below the minimum size leaves r overhanging,
// pinned top-left.
func (s *Surface) fit(r Rect) Rect {
	r.W = clamp(r.W, s.cfg.MinWidth, s.effectiveMax(s.cfg.MaxWidth, s.cfg.MinWidth, s.vp.Width))
	r.H = clamp(r.H, s.cfg.MinHeight, s.effectiveMax(s.cfg.MaxHeight, s.cfg.MinHeight, s.vp.Height))
	return clampInto(r, s.vp)
}

// effectiveMax caps a configured maximum to the viewport without going below
// the configured minimum.
func (s *Surface) effectiveMax(cfgMax, cfgMin, viewport int) int {
	if viewport > 0 && viewport < cfgMax {
		return max(viewport, cfgMin)
	}
	return cfgMax
}

// Package geometry owns the size and position of floating panels.
//
// A Surface keeps two rects: the committed one, which only changes when a drag or
// resize gesture ends, and the live one shown while a gesture is in progress.
// All values are terminal cells.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidBounds is returned for panel configurations that cannot be satisfied.
var ErrInvalidBounds = errors.New("geometry: invalid bounds")

// Rect is the position and size of a panel.
type Rect struct {
	X, Y int
	W, H int
}

// Right returns the first column past the panel.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row past the panel.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the cell (px, py) is inside r.
func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px < r.Right() && py >= r.Y && py < r.Bottom()
}

// Viewport is the drawable area panels must stay inside.
type Viewport struct {
	Width  int
	Height int
}

// Config describes default placement and size limits for one panel.
type Config struct {
	DefaultWidth  int `mapstructure:"default_width"`
	DefaultHeight int `mapstructure:"default_height"`
	DefaultX      int `mapstructure:"default_x"`
	DefaultY      int `mapstructure:"default_y"`
	MinWidth      int `mapstructure:"min_width"`
	MinHeight     int `mapstructure:"min_height"`
	MaxWidth      int `mapstructure:"max_width"`
	MaxHeight     int `mapstructure:"max_height"`
}

// Validate rejects configurations whose limits contradict each other.
func (c Config) Validate() error {
	if c.MinWidth < 1 || c.MinHeight < 1 {
		return fmt.Errorf("%w: minimum size %dx%d must be positive", ErrInvalidBounds, c.MinWidth, c.MinHeight)
	}
	if c.MinWidth > c.MaxWidth {
		return fmt.Errorf("%w: min width %d > max width %d", ErrInvalidBounds, c.MinWidth, c.MaxWidth)
	}
	if c.MinHeight > c.MaxHeight {
		return fmt.Errorf("%w: min height %d > max height %d", ErrInvalidBounds, c.MinHeight, c.MaxHeight)
	}
	if c.DefaultWidth < c.MinWidth || c.DefaultWidth > c.MaxWidth {
		return fmt.Errorf("%w: default width %d outside [%d, %d]", ErrInvalidBounds, c.DefaultWidth, c.MinWidth, c.MaxWidth)
	}
	if c.DefaultHeight < c.MinHeight || c.DefaultHeight > c.MaxHeight {
		return fmt.Errorf("%w: default height %d outside [%d, %d]", ErrInvalidBounds, c.DefaultHeight, c.MinHeight, c.MaxHeight)
	}
	if c.DefaultX < 0 || c.DefaultY < 0 {
		return fmt.Errorf("%w: default position (%d, %d) is negative", ErrInvalidBounds, c.DefaultX, c.DefaultY)
	}
	return nil
}

// Defaults returns the rect a freshly opened panel starts with.
func (c Config) Defaults() Rect {
	return Rect{X: c.DefaultX, Y: c.DefaultY, W: c.DefaultWidth, H: c.DefaultHeight}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampInto shifts r so its bounding box lies inside vp. A panel wider or
// taller than the viewport is pinned to the top-left corner.
func clampInto(r Rect, vp Viewport) Rect {
	if vp.Width <= 0 || vp.Height <= 0 {
		return r
	}
	r.X = clamp(r.X, 0, max(0, vp.Width-r.W))
	r.Y = clamp(r.Y, 0, max(0, vp.Height-r.H))
	return r
}

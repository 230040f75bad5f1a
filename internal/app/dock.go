package app

const (
	dockMinWidth     = 320
	dockMaxWidth     = 720
	dockInitialWidth = 360

	// The dock tracks width in layout units; rendering maps units to
	// terminal cells at this ratio, so the visible dock spans 40-90 columns.
	dockUnitsPerCell = 8
)

// Dock owns the assistant panel's visibility and width under a
// direct-manipulation resize gesture. It is a plain Idle/Dragging state
// machine over pointer events, independent of the UI toolkit delivering
// them; conversation state lives elsewhere.
type Dock struct {
	width   int
	visible bool

	dragging   bool
	startX     int
	startWidth int
}

func NewDock(width int, visible bool) Dock {
	if width <= 0 {
		width = dockInitialWidth
	}
	return Dock{width: clampInt(width, dockMinWidth, dockMaxWidth), visible: visible}
}

func (d Dock) Width() int     { return d.width }
func (d Dock) Visible() bool  { return d.visible }
func (d Dock) Dragging() bool { return d.dragging }

// Cells is the dock's rendered width in terminal columns.
func (d Dock) Cells() int {
	return d.width / dockUnitsPerCell
}

// Toggle flips visibility. The remembered width survives a hide/show cycle
// so reopening restores the previous size. Hiding cancels any active drag.
func (d *Dock) Toggle() {
	d.visible = !d.visible
	if !d.visible {
		d.dragging = false
	}
}

// PointerDown starts a drag on the resize handle, capturing the gesture
// origin. Ignored while the dock is hidden.
func (d *Dock) PointerDown(x int) {
	if !d.visible {
		return
	}
	d.dragging = true
	d.startX = x
	d.startWidth = d.width
}

// PointerMove recomputes the width from the captured start state. The
// handle sits on the panel's left edge, so moving the pointer left grows
// the panel. The result is clamped to [dockMinWidth, dockMaxWidth] during
// the drag, not just at release. O(1) per event: only the captured start
// values are consulted.
func (d *Dock) PointerMove(x int) {
	if !d.dragging {
		return
	}
	d.width = clampInt(d.startWidth+(d.startX-x), dockMinWidth, dockMaxWidth)
}

// PointerUp ends the drag. No momentum: the width stays wherever the last
// move left it.
func (d *Dock) PointerUp() {
	d.dragging = false
}

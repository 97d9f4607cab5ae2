package grid

// Point is a position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width and height in viewport pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement is the computed top-left corner of a popover.
type Placement struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	FlipX bool    `json:"flip_x,omitempty"`
	FlipY bool    `json:"flip_y,omitempty"`
}

// PlacePopover anchors a popover at anchor, flipping to the left or above
// the anchor when it would cross the viewport's right or bottom edge.
// A zero viewport dimension disables flipping on that axis.
func PlacePopover(anchor Point, size Size, viewport Size) Placement {
	p := Placement{Left: anchor.X, Top: anchor.Y}

	if viewport.Width > 0 && anchor.X+size.Width > viewport.Width {
		p.Left = anchor.X - size.Width
		p.FlipX = true
	}
	if viewport.Height > 0 && anchor.Y+size.Height > viewport.Height {
		p.Top = anchor.Y - size.Height
		p.FlipY = true
	}
	if p.Left < 0 {
		p.Left = 0
	}
	if p.Top < 0 {
		p.Top = 0
	}
	return p
}

package action

import "fmt"

// Geometry is a rectangle in screen coordinates.
type Geometry struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WmctrlSpec renders g as a wmctrl -e argument with default gravity.
func (g Geometry) WmctrlSpec() string {
	return fmt.Sprintf("0,%d,%d,%d,%d", g.X, g.Y, g.Width, g.Height)
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y)
}

// Monitors maps a 0-based monitor index ("0", "1", ...) to its bounds.
type Monitors map[string]Geometry

// DefaultMonitors is a landscape primary with a portrait secondary to its
// right.
func DefaultMonitors() Monitors {
	return Monitors{
		"0": {X: 0, Y: 0, Width: 2560, Height: 1440},
		"1": {X: 2560, Y: 0, Width: 1200, Height: 1920},
	}
}

// FallbackMonitor is used for any index the table does not know.
var FallbackMonitor = Geometry{X: 0, Y: 0, Width: 1920, Height: 1080}

// Bounds returns the geometry for monitor, or FallbackMonitor.
func (m Monitors) Bounds(monitor string) Geometry {
	if g, ok := m[monitor]; ok {
		return g
	}
	return FallbackMonitor
}

// region derives a sub-rectangle of a monitor.
type region func(Geometry) Geometry

var regions = map[string]region{
	"top-third": func(b Geometry) Geometry {
		return Geometry{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height / 3}
	},
	"middle-third": func(b Geometry) Geometry {
		return Geometry{X: b.X, Y: b.Y + b.Height/3, Width: b.Width, Height: b.Height / 3}
	},
	"bottom-third": func(b Geometry) Geometry {
		return Geometry{X: b.X, Y: b.Y + 2*b.Height/3, Width: b.Width, Height: b.Height / 3}
	},
	"left-half": func(b Geometry) Geometry {
		return Geometry{X: b.X, Y: b.Y, Width: b.Width / 2, Height: b.Height}
	},
	"right-half": func(b Geometry) Geometry {
		return Geometry{X: b.X + b.Width/2, Y: b.Y, Width: b.Width / 2, Height: b.Height}
	},
}

// centered is the default region: the middle quarter of the monitor.
func centered(b Geometry) Geometry {
	return Geometry{X: b.X + b.Width/4, Y: b.Y + b.Height/4, Width: b.Width / 2, Height: b.Height / 2}
}

// Place computes where a window at position on monitor should go.
// Unknown positions, including "center", are centered.
func (m Monitors) Place(position, monitor string) Geometry {
	bounds := m.Bounds(monitor)
	if r, ok := regions[position]; ok {
		return r(bounds)
	}
	return centered(bounds)
}

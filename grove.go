package grove

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// The presentation layer decides how (and whether) to premultiply.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout the
// API. The coordinate system has its origin at the top-left, with Y
// increasing downward.
type Vec2 struct {
	X, Y float64
}

// EntityKind classifies what role an item plays on the canvas. It lives on
// the Text component; an entity without a Text row has no classification.
type EntityKind string

const (
	KindIdea  EntityKind = "idea"
	KindTheme EntityKind = "theme"
)

// Shape selects the outline the presentation layer draws for a Visual row.
type Shape uint8

const (
	ShapeCircle Shape = iota // default
	ShapeEllipse
	ShapeRect
	ShapeLeaf   // organic teardrop used for idea nodes
	ShapeCustom // presentation layer supplies its own path
)

// String returns the shape name used in events and style maps.
func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeEllipse:
		return "ellipse"
	case ShapeRect:
		return "rect"
	case ShapeLeaf:
		return "leaf"
	case ShapeCustom:
		return "custom"
	default:
		return "circle"
	}
}

// Gradient is an optional two-stop fill. Angle is in degrees.
type Gradient struct {
	From  Color
	To    Color
	Angle float64
}

// Shadow is an optional drop shadow.
type Shadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Color   Color
}

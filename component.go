package grove

// Kind identifies one component table. The set is closed: grove stores
// exactly these four aspects of an item.
type Kind uint8

const (
	KindPosition Kind = iota
	KindText
	KindVisual
	KindAnimation

	kindCount
)

// Kinds returns the full closed set, in table order.
func Kinds() []Kind {
	return []Kind{KindPosition, KindText, KindVisual, KindAnimation}
}

// String returns the kind name used in events and logs.
func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindText:
		return "text"
	case KindVisual:
		return "visual"
	case KindAnimation:
		return "animation"
	default:
		return "unknown"
	}
}

// kindMask is a bitset over the closed Kind space. The world keeps one per
// entity so composite queries never touch the component tables.
type kindMask uint8

func (m *kindMask) set(k Kind)                    { *m |= 1 << k }
func (m *kindMask) unset(k Kind)                  { *m &^= 1 << k }
func (m kindMask) has(k Kind) bool                { return m&(1<<k) != 0 }
func (m kindMask) containsAll(sub kindMask) bool  { return m&sub == sub }
func (m kindMask) intersects(other kindMask) bool { return m&other != 0 }

func maskOf(kinds []Kind) kindMask {
	var m kindMask
	for _, k := range kinds {
		m.set(k)
	}
	return m
}

// kinds returns the set bits in table order.
func (m kindMask) kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		if m.has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Component is one typed data row attached to an entity. Row existence is
// the sole truth for "this item has aspect X"; there are no empty sentinel
// rows.
type Component interface {
	Kind() Kind
}

// MaxTextLength caps Text.Content. Longer content is a contract violation
// the caller must truncate before storing.
const MaxTextLength = 500

// Position is where an item sits on the spiral: polar slot (Angle, Radius,
// Index) plus the derived Cartesian point, with ordering and scale hints the
// presentation layer reads verbatim.
type Position struct {
	X, Y   float64
	Angle  float64 // degrees, [0, 360)
	Radius float64
	Index  int // spiral slot, 0 = center-most
	Scale  float64
	ZIndex int

	// Target, when non-nil, is where an in-flight animation is taking this
	// item. IsAnimating mirrors the Animation row so readers of Position
	// alone can tell a settled item from a moving one.
	Target      *Vec2
	IsAnimating bool
}

// Kind implements Component.
func (Position) Kind() Kind { return KindPosition }

// Text is an item's label and classification. EntityKind on this row is the
// only place grove records whether an item is an idea or a theme.
type Text struct {
	Content    string // at most MaxTextLength
	Editable   bool
	FontSize   float64
	FontFamily string
	Color      Color
	EntityKind EntityKind
}

// Kind implements Component.
func (Text) Kind() Kind { return KindText }

// Visual describes how an item looks. grove never draws; the presentation
// adapter reads these rows each tick and paints them.
type Visual struct {
	Visible     bool
	Opacity     float64
	Shape       Shape
	Width       float64
	Height      float64
	Fill        Color
	Stroke      Color
	StrokeWidth float64
	Gradient    *Gradient
	Shadow      *Shadow

	// Styles carries presentation-specific overrides grove treats as opaque.
	Styles map[string]string
}

// Kind implements Component.
func (Visual) Kind() Kind { return KindVisual }

// AnimationKind names what an animation does to its entity.
type AnimationKind string

const (
	AnimationMove  AnimationKind = "move"  // Position toward Target
	AnimationFade  AnimationKind = "fade"  // reserved for the adapter
	AnimationScale AnimationKind = "scale" // reserved for the adapter
)

// Animation is the progress record for one in-flight animation. Duration and
// Delay are in seconds; Progress runs 0 to 1 over Duration once Delay has
// elapsed.
type Animation struct {
	Active    bool
	Motion    AnimationKind
	Duration  float64
	Delay     float64
	Easing    string // easing name, see EaseFunc
	Progress  float64
	Loop      bool
	LoopCount int // completed loops so far
}

// Kind implements Component.
func (Animation) Kind() Kind { return KindAnimation }

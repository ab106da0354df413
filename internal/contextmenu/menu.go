// Package contextmenu models a positioned overlay of actions. The caller owns
// whether a menu is open; a Menu only reports that it wants to close.
package contextmenu

const (
	itemHeight   = 32
	menuWidth    = 180
	menuPadding  = 8
	edgeMargin   = 4
	defaultViewW = 1280
	defaultViewH = 720
)

// Option is a single selectable entry.
type Option struct {
	Label  string
	Action func()
	Danger bool
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Rect is a half-open rectangle: Min is inside, Max is outside.
type Rect struct {
	Min Point
	Max Point
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// DefaultViewport is used when the client does not report its size.
func DefaultViewport() Size {
	return Size{Width: defaultViewW, Height: defaultViewH}
}

// EstimateSize returns the rendered size of a menu with n items.
func EstimateSize(n int) Size {
	if n < 0 {
		n = 0
	}
	return Size{Width: menuWidth, Height: n*itemHeight + 2*menuPadding}
}

// Place positions a menu of the given size at anchor, shifting it so it stays inside viewport.
func Place(anchor Point, size Size, viewport Size) Point {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport()
	}
	pos := anchor
	if pos.X+size.Width > viewport.Width-edgeMargin {
		pos.X = viewport.Width - edgeMargin - size.Width
	}
	if pos.Y+size.Height > viewport.Height-edgeMargin {
		pos.Y = viewport.Height - edgeMargin - size.Height
	}
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos
}

type Menu struct {
	Anchor  Point
	Options []Option
	OnClose func()
}

// Open builds a menu placed within viewport.
func Open(anchor Point, viewport Size, onClose func(), options ...Option) *Menu {
	return &Menu{
		Anchor:  Place(anchor, EstimateSize(len(options)), viewport),
		Options: options,
		OnClose: onClose,
	}
}

func (m *Menu) Size() Size {
	return EstimateSize(len(m.Options))
}

func (m *Menu) Bounds() Rect {
	size := m.Size()
	return Rect{
		Min: m.Anchor,
		Max: Point{X: m.Anchor.X + size.Width, Y: m.Anchor.Y + size.Height},
	}
}

// PointerDown closes the menu when p falls outside it and reports whether it did.
func (m *Menu) PointerDown(p Point) bool {
	if m.Bounds().Contains(p) {
		return false
	}
	m.close()
	return true
}

// Select runs the chosen option's action and then closes the menu.
func (m *Menu) Select(index int) bool {
	if index < 0 || index >= len(m.Options) {
		return false
	}
	if action := m.Options[index].Action; action != nil {
		action()
	}
	m.close()
	return true
}

func (m *Menu) close() {
	if m.OnClose != nil {
		m.OnClose()
	}
}

type Item struct {
	Label  string `json:"label"`
	Danger bool   `json:"danger,omitempty"`
}

type View struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Items []Item `json:"items"`
}

func (m *Menu) Render() View {
	items := make([]Item, 0, len(m.Options))
	for _, opt := range m.Options {
		items = append(items, Item{Label: opt.Label, Danger: opt.Danger})
	}
	return View{X: m.Anchor.X, Y: m.Anchor.Y, Items: items}
}

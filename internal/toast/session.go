package toast

import (
	"github.com/meddot/meddot-backend/internal/contextmenu"
)

// Client event types accepted on a stream.
const (
	EventDismiss     = "dismiss"
	EventContextMenu = "contextmenu"
	EventSelect      = "select"
	EventPointerDown = "pointerdown"
)

// Server event types pushed on a stream.
const (
	EventToasts     = "toasts"
	EventMenu       = "menu"
	EventMenuClosed = "menu_closed"
	EventError      = "error"
)

type ClientEvent struct {
	Type     string            `json:"type"`
	ID       string            `json:"id,omitempty"`
	X        int               `json:"x,omitempty"`
	Y        int               `json:"y,omitempty"`
	Index    int               `json:"index,omitempty"`
	Viewport *contextmenu.Size `json:"viewport,omitempty"`
}

type ServerEvent struct {
	Type   string            `json:"type"`
	Toasts []View            `json:"toasts"`
	Menu   *contextmenu.View `json:"menu,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Session is one connected client's view of a Center. It owns the open state
// of the toast context menu. A Session is not safe for concurrent use.
type Session struct {
	center *Center
	menu   *contextmenu.Menu
}

func NewSession(center *Center) *Session {
	return &Session{center: center}
}

// Snapshot is the event pushed after every center change.
func (s *Session) Snapshot() ServerEvent {
	return ServerEvent{Type: EventToasts, Toasts: s.center.Render()}
}

func (s *Session) MenuOpen() bool {
	return s.menu != nil
}

// Handle applies a client event and returns the events to send back. Toast
// changes are not returned here; they arrive through the center subscription.
func (s *Session) Handle(ev ClientEvent) []ServerEvent {
	switch ev.Type {
	case EventDismiss:
		s.center.Dismiss(ev.ID)
		return nil

	case EventContextMenu:
		return s.openMenu(ev)

	case EventSelect:
		if s.menu == nil {
			return nil
		}
		if !s.menu.Select(ev.Index) {
			return nil
		}
		return []ServerEvent{{Type: EventMenuClosed}}

	case EventPointerDown:
		if s.menu == nil {
			return nil
		}
		if !s.menu.PointerDown(contextmenu.Point{X: ev.X, Y: ev.Y}) {
			return nil
		}
		return []ServerEvent{{Type: EventMenuClosed}}
	}

	return []ServerEvent{{Type: EventError, Error: "unsupported event type"}}
}

func (s *Session) openMenu(ev ClientEvent) []ServerEvent {
	if !s.hasToast(ev.ID) {
		return []ServerEvent{{Type: EventError, Error: "toast not found"}}
	}

	viewport := contextmenu.DefaultViewport()
	if ev.Viewport != nil {
		viewport = *ev.Viewport
	}

	id := ev.ID
	s.menu = contextmenu.Open(
		contextmenu.Point{X: ev.X, Y: ev.Y},
		viewport,
		func() { s.menu = nil },
		contextmenu.Option{Label: "Dismiss", Action: func() { s.center.Dismiss(id) }},
		contextmenu.Option{Label: "Dismiss all", Danger: true, Action: func() { s.center.DismissAll() }},
	)

	view := s.menu.Render()
	return []ServerEvent{{Type: EventMenu, Menu: &view}}
}

func (s *Session) hasToast(id string) bool {
	if id == "" {
		return false
	}
	for _, v := range s.center.Render() {
		if v.ID == id {
			return true
		}
	}
	return false
}

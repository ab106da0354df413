package controllers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meddot/meddot-backend/api/responses"
	"github.com/meddot/meddot-backend/internal/toast"
	pkgerrors "github.com/meddot/meddot-backend/pkg/errors"
	"github.com/meddot/meddot-backend/pkg/logger"
)

const (
	streamWriteWait   = 10 * time.Second
	streamPongWait    = 60 * time.Second
	streamPingPeriod  = (streamPongWait * 9) / 10
	streamMaxReadSize = 4096
	streamOutboxSize  = 16
)

// CenterProvider hands out the live center for a user.
type CenterProvider interface {
	Center(userID string) *toast.Center
}

// ToastStream upgrades to a websocket that pushes the user's toasts after every
// change and accepts dismiss and context menu events. One goroutine owns all
// writes to the connection.
func ToastStream(hub CenterProvider, allowedOrigins []string, logg *logger.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast service unavailable"))
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "toast.stream.upgrade_failed")
			}
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithField(ctx, "event", "toast.stream")
			logg.Info(ctx, "toast stream opened")
		}

		runToastStream(ctx, conn, hub.Center(userID))

		if logg != nil {
			logg.Info(ctx, "toast stream closed")
		}
	}
}

func runToastStream(ctx context.Context, conn *websocket.Conn, center *toast.Center) {
	defer conn.Close()

	changes, unsubscribe := center.Subscribe()
	defer unsubscribe()

	session := toast.NewSession(center)
	outbox := make(chan toast.ServerEvent, streamOutboxSize)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		writeToastStream(ctx, conn, session, changes, outbox, done)
	}()

	conn.SetReadLimit(streamMaxReadSize)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		var ev toast.ClientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		for _, reply := range session.Handle(ev) {
			select {
			case outbox <- reply:
			case <-done:
			}
		}
	}

	close(done)
	wg.Wait()
}

func writeToastStream(ctx context.Context, conn *websocket.Conn, session *toast.Session, changes <-chan struct{}, outbox <-chan toast.ServerEvent, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	write := func(ev toast.ServerEvent) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(ev) == nil
	}

	if !write(session.Snapshot()) {
		_ = conn.Close()
		return
	}

	for {
		select {
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-changes:
			if !write(session.Snapshot()) {
				_ = conn.Close()
				return
			}
		case ev := <-outbox:
			if !write(ev) {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// originChecker allows same-origin requests, requests without an Origin
// header, and the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			set[strings.ToLower(origin)] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

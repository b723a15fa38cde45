package api

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"StonkPulse/internal/domain/models"
	xlogger "StonkPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// SnapshotSource produces the dashboard snapshot pushed to clients.
type SnapshotSource interface {
	Snapshot() models.Dashboard
}

// SnapshotStream pushes the dashboard snapshot to websocket clients on a fixed cadence.
type SnapshotStream struct {
	src      SnapshotSource
	interval time.Duration
	logger   *xlogger.Logger
	upgrader websocket.Upgrader

	closed    chan struct{}
	closeOnce sync.Once
}

// NewSnapshotStream creates the pusher. Browsers skip CORS on websocket
// upgrades, so origins is checked here: "*" admits any origin, and a request
// without Origin or from the serving host is always admitted.
func NewSnapshotStream(src SnapshotSource, interval time.Duration, origins []string, logger *xlogger.Logger) *SnapshotStream {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &SnapshotStream{
		src:      src,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(origins),
		},
		closed: make(chan struct{}),
	}
}

// Close ends every open stream. Hijacked connections are not covered by
// the HTTP server's graceful shutdown.
func (s *SnapshotStream) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Serve upgrades the request and writes a snapshot immediately and then every interval
// until the client goes away or the request context ends.
func (s *SnapshotStream) Serve(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		s.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// read loop: only control frames are expected; any read error ends the stream
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := time.NewTicker(s.interval)
	defer push.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	s.logger.Debug("websocket client connected", xlogger.String("remote", c.RealIP()))
	if err := s.write(conn); err != nil {
		return nil
	}
	for {
		select {
		case <-s.closed:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
			return nil
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case <-push.C:
			if err := s.write(conn); err != nil {
				s.logger.Debug("websocket write failed", xlogger.Error(err))
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	wildcard := slices.Contains(origins, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (s *SnapshotStream) write(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(s.src.Snapshot())
}

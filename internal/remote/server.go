// Package remote exposes the bot to a browser-side game client over a
// websocket. The client describes its canvas and palette, toggles whether
// the bot may draw, and asks for turns; the bot answers with the tool,
// color and pointer actions of each turn.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/example/sketchbot/internal/logging"
	"github.com/example/sketchbot/internal/planner"
	"github.com/example/sketchbot/internal/turn"
)

// Server accepts game clients. Each connection gets its own turn session.
type Server struct {
	opts     turn.Options
	upgrader websocket.Upgrader

	// OnDone, when set, is called after every finished turn.
	OnDone func(id uuid.UUID, report *turn.Report)

	mu    sync.RWMutex
	conns map[uuid.UUID]*Conn
}

// NewServer returns a server whose sessions start from opts.
func NewServer(opts turn.Options) *Server {
	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Game pages live on a third-party origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[uuid.UUID]*Conn),
	}
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) add(id uuid.UUID, c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = c
}

func (s *Server) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

// ServeHTTP upgrades the request and serves the client until it
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := newConn(ws)
	sess := turn.NewSession(c, s.opts)
	log := logging.Logger().With("session", sess.ID.String())
	s.add(sess.ID, c)
	defer s.remove(sess.ID)
	defer ws.Close()
	log.Info("client connected", "remote", r.RemoteAddr)

	if err := c.send(welcomeMsg{Type: TypeWelcome, Session: sess.ID.String()}); err != nil {
		log.Warn("welcome failed", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	turns := make(chan Inbound, 1)
	go s.readLoop(c, cancel, turns)

	for req := range turns {
		s.runTurn(ctx, c, sess, req)
	}
	log.Info("client disconnected")
}

// readLoop owns all reads. It applies hello and state messages directly
// so liveness changes are visible while a turn is running, and hands turn
// requests to the serving goroutine.
func (s *Server) readLoop(c *Conn, cancel context.CancelFunc, turns chan<- Inbound) {
	defer close(turns)
	defer cancel()
	defer c.closed.Store(true)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var m Inbound
		if err := json.Unmarshal(data, &m); err != nil {
			c.sendError(fmt.Errorf("malformed message: %v", err))
			continue
		}
		switch m.Type {
		case TypeHello:
			if err := c.hello(m); err != nil {
				c.sendError(err)
			}
		case TypeState:
			c.active.Store(m.Active)
		case TypeTurn:
			select {
			case turns <- m:
			default:
				c.sendError(fmt.Errorf("turn already in progress"))
			}
		default:
			logging.Logger().Warn("dropped message", "type", m.Type)
			c.sendError(fmt.Errorf("unknown message type %q", m.Type))
		}
	}
}

func (s *Server) runTurn(ctx context.Context, c *Conn, sess *turn.Session, req Inbound) {
	if !c.Ready() {
		c.sendError(fmt.Errorf("turn before hello"))
		return
	}
	opts := s.opts
	opts.Background = c.Background()
	if req.Mode != "" {
		mode, err := planner.ParseMode(req.Mode)
		if err != nil {
			c.sendError(err)
			return
		}
		opts.Mode = mode
	}
	if req.Brush != nil {
		opts.BrushIndex = *req.Brush
	}
	sess.SetOptions(opts)

	report, err := sess.DrawSource(ctx, req.Image)
	if report != nil {
		if s.OnDone != nil {
			s.OnDone(sess.ID, report)
		}
		_ = c.send(Done{
			Type:      TypeDone,
			Executed:  report.Result.Executed,
			Abandoned: report.Result.Abandoned,
			Completed: report.Completed,
			Reason:    report.Result.Reason.String(),
		})
	}
	if err != nil {
		c.sendError(err)
	}
}

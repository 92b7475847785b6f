// Package remote serves the parameter panel over HTTP so the scene can be
// driven from a browser or script. GET /params describes every field and its
// value; /ws is a websocket carrying {"name","value"} changes both ways.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"piggy-viewer/internal/logger"
	"piggy-viewer/internal/params"
)

const (
	clientQueue  = 32
	writeTimeout = 5 * time.Second
)

// Description is the body of GET /params.
type Description struct {
	Fields []params.Field `json:"fields"`
	Values map[string]any `json:"values"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server relays parameter changes between the store and remote clients.
// Incoming changes are never applied directly: they are queued on the
// channel given to New and applied by the render thread.
type Server struct {
	store    *params.Store
	out      chan<- params.Change
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New creates a server for store and subscribes it to every change.
func New(store *params.Store, out chan<- params.Change) *Server {
	s := &Server{
		store: store,
		out:   out,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	store.SubscribeAll(s.broadcast)
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/params", s.handleParams)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.closeAll()
	}()

	logger.Log.Info("remote panel listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	desc := Description{Fields: s.store.Fields(), Values: s.store.Snapshot()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(desc); err != nil {
		logger.Log.Warn("write params", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := s.register(conn)
	logger.Log.Debug("remote client connected", zap.String("addr", r.RemoteAddr))

	go s.writeLoop(c)
	s.readLoop(c)
}

// register queues the current value of every field for conn and adds it to
// the broadcast set under one lock, so no change can fall between the two.
func (s *Server) register(conn *websocket.Conn) *client {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.store.Fields()
	snapshot := s.store.Snapshot()
	c := &client{conn: conn, send: make(chan []byte, clientQueue+len(fields))}
	for _, f := range fields {
		if data, err := json.Marshal(params.Change{Name: f.Name, Value: snapshot[f.Name]}); err == nil {
			c.send <- data
		}
	}
	s.clients[c] = struct{}{}
	return c
}

// readLoop queues every valid change sent by c until the connection drops.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		var ch params.Change
		if err := c.conn.ReadJSON(&ch); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log.Debug("remote client read", zap.Error(err))
			}
			return
		}
		if _, ok := s.store.Field(ch.Name); !ok {
			logger.Log.Warn("remote change for unknown parameter", zap.String("name", ch.Name))
			continue
		}
		select {
		case s.out <- ch:
		default:
			logger.Log.Warn("parameter queue full, dropping remote change", zap.String("name", ch.Name))
		}
	}
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Log.Debug("remote client write", zap.Error(err))
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// broadcast runs on the goroutine that changed the store and must not block.
func (s *Server) broadcast(name string, value any) {
	data, err := json.Marshal(params.Change{Name: name, Value: value})
	if err != nil {
		logger.Log.Warn("encode change", zap.String("name", name), zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			logger.Log.Warn("remote client too slow, dropping change", zap.String("name", name))
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// Clients reports how many websocket clients are connected.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

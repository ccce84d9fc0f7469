// Package server exposes the editor services to a browser frontend: a
// websocket event channel for file, terminal, git and AI requests, an
// interactive PTY terminal endpoint, and filesystem change notifications.
package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/config"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/terminal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The server binds to loopback; origin checks add nothing there.
		return true
	},
}

// Server wires the services behind HTTP and websocket endpoints.
type Server struct {
	cfg     *config.Config
	files   *fileops.Service
	term    *terminal.Service
	git     *gitsvc.Service
	ai      *assistant.Assistant
	watcher *Watcher
}

// New creates a server over the given services. watcher may be nil to
// disable change notifications.
func New(cfg *config.Config, files *fileops.Service, term *terminal.Service, git *gitsvc.Service, ai *assistant.Assistant, watcher *Watcher) *Server {
	if cfg == nil {
		panic("config is required")
	}
	if files == nil || term == nil || git == nil || ai == nil {
		panic("all services are required")
	}
	return &Server{cfg: cfg, files: files, term: term, git: git, ai: ai, watcher: watcher}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.GET("/ws", s.handleEvents)
	r.GET("/ws/terminal", s.handleTerminal)

	return r
}

// Run starts the watcher (if any) and serves until the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if s.watcher != nil {
		go s.watcher.Run(ctx)
	}
	log.Printf("listening on %s (workspace %s)", s.cfg.Server.Addr, s.cfg.Workspace)
	return s.Router().Run(s.cfg.Server.Addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"workspace": s.cfg.Workspace,
		"model":     s.cfg.Model,
	})
}

// handleEvents upgrades to the JSON event channel and serves requests
// until the client disconnects. Watcher events are pushed on the same
// connection.
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("event channel upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := newChannel(conn)
	if s.watcher != nil {
		unsubscribe := s.watcher.Subscribe(func(ev ChangeEvent) {
			_ = ch.send(Response{Type: "fs.changed", Payload: ev})
		})
		defer unsubscribe()
	}

	s.serve(c.Request.Context(), ch)
}

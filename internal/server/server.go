package server

import (
	"crypto/tls"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/neo/rapbattle_backend/internal/debate"
	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/neo/rapbattle_backend/internal/news"
	"github.com/neo/rapbattle_backend/internal/persona"
	"github.com/quic-go/quic-go/http3"
)

// Server exposes the debate registry and persona store over HTTP and
// WebSocket.
type Server struct {
	router    *gin.Engine
	registry  *debate.Registry
	store     persona.Store
	headlines news.HeadlineProvider
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
	EnableCompression: true,
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(registry *debate.Registry, store persona.Store, headlines news.HeadlineProvider) *Server {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, HEAD")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		router:    router,
		registry:  registry,
		store:     store,
		headlines: headlines,
	}

	router.POST("/api/debate/start", server.handleStartDebate)
	router.POST("/api/debate/:id/ack", server.handleAckAudio)
	router.POST("/api/debate/:id/cancel", server.handleCancel)
	router.GET("/api/debate/:id", server.handleGetDebate)
	router.GET("/ws/debate/:id", server.handleDebateWebSocket)
	router.GET("/api/leaderboard", server.handleLeaderboard)
	router.GET("/api/personas", server.handleListPersonas)
	router.GET("/api/headline", server.handleTopHeadline)

	return server
}

// Router exposes the underlying engine, mainly for handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the server. With cert and key files configured it serves
// HTTPS with HTTP/2 plus an HTTP/3 listener on the same address;
// otherwise plain HTTP.
func (s *Server) Run(addr, certFile, keyFile string) error {
	if certFile == "" || keyFile == "" {
		return http.ListenAndServe(addr, s.router)
	}

	go func() {
		if err := http3.ListenAndServeQUIC(addr, certFile, keyFile, s.router); err != nil {
			logging.Warn("HTTP/3 listener stopped", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
		TLSConfig: &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		},
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}

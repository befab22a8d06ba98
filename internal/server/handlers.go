package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/neo/rapbattle_backend/internal/types"
)

// StartDebateRequest is the payload for starting a new battle.
type StartDebateRequest struct {
	Pro         string `json:"pro" binding:"required"`
	Con         string `json:"con" binding:"required"`
	Topic       string `json:"topic" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) handleStartDebate(c *gin.Context) {
	var req StartDebateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	topic, err := types.NewTopic(req.Topic, req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, _, err := s.registry.StartDebate(req.Pro, req.Con, topic)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"debate_id": id,
		"events":    "/ws/debate/" + id,
	})
}

func (s *Server) handleAckAudio(c *gin.Context) {
	if err := s.registry.AckAudio(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acked"})
}

func (s *Server) handleCancel(c *gin.Context) {
	s.registry.Cancel(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (s *Server) handleGetDebate(c *gin.Context) {
	orch, ok := s.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "debate not found"})
		return
	}
	c.JSON(http.StatusOK, orch.Snapshot())
}

// clientCommand is an inbound WebSocket control message.
type clientCommand struct {
	Type string `json:"type"`
}

// handleDebateWebSocket streams session snapshots to the client and
// accepts ack/cancel commands on the same connection.
func (s *Server) handleDebateWebSocket(c *gin.Context) {
	id := c.Param("id")
	orch, ok := s.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "debate not found"})
		return
	}
	events := orch.Events()
	if events == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "debate not started"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("Failed to upgrade connection", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
		return
	}
	defer ws.Close()

	logging.LogWebSocketEvent("client_connected", id, nil)

	// Read loop: ack and cancel commands drive the playback handshake.
	go func() {
		for {
			var cmd clientCommand
			if err := ws.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logging.LogWebSocketEvent("client_read_error", id, map[string]interface{}{
						"error": err.Error(),
					})
				}
				return
			}
			switch cmd.Type {
			case "ack":
				orch.AckAudio()
			case "cancel":
				orch.Cancel()
			default:
				logging.LogWebSocketEvent("unknown_command", id, map[string]interface{}{
					"type": cmd.Type,
				})
			}
		}
	}()

	// Write loop: forward snapshots until the channel closes.
	for snapshot := range events.C() {
		if err := ws.WriteJSON(snapshot); err != nil {
			logging.LogWebSocketEvent("client_write_error", id, map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}

	logging.LogWebSocketEvent("stream_closed", id, nil)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	entries, err := s.store.Leaderboard(10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (s *Server) handleListPersonas(c *gin.Context) {
	personas, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list personas"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"personas": personas})
}

func (s *Server) handleTopHeadline(c *gin.Context) {
	headline, err := s.headlines.TopHeadline(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no headline available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"headline": headline})
}

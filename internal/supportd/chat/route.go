package chat

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/handoff"
)

func (s *Service) initRouter() {
	s.router.GET("/health", s.handleHealth)
	s.router.NoRoute(s.NoRoute)

	api := s.router.Group("/api/v1")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/session/:id", s.handleSession)
		api.GET("/session/:id/messages", s.handleMessages)
		api.POST("/session/:id/messages", s.handlePostMessage)
		api.GET("/queue/position/:id", s.handleQueuePosition)
		api.GET("/stream/:id", s.handleStream)
	}
}

func (s *Service) NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.Redirect(http.StatusFound, "/health")
}

func (s *Service) handleHealth(c *gin.Context) {
	if err := s.rdb.Ping(c.Request.Context()).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Service) handleChat(c *gin.Context) {
	req := struct {
		UserID  string `json:"user_id"`
		Message string `json:"message" binding:"required"`
	}{}

	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, errors.ErrInvalidArg("message"))
		return
	}

	reply, err := s.responder.Respond(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Service) handleSession(c *gin.Context) {
	session, err := s.handoff.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Service) handleMessages(c *gin.Context) {
	session, err := s.handoff.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "messages": session.Messages})
}

func (s *Service) handlePostMessage(c *gin.Context) {
	req := struct {
		Role    string `json:"role"`
		Content string `json:"content" binding:"required"`
	}{}

	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, errors.ErrInvalidArg("content"))
		return
	}
	if req.Role == "" {
		req.Role = handoff.RoleUser
	}

	message, err := s.handoff.AddMessage(c.Request.Context(), c.Param("id"), req.Role, req.Content)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (s *Service) handleQueuePosition(c *gin.Context) {
	id := c.Param("id")
	pos, err := s.handoff.QueuePosition(c.Request.Context(), id)
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "position": pos, "queued": pos > 0})
}

// handleStream pushes the session's live messages as server-sent events.
// Each redis pub/sub payload becomes one "message" event.
func (s *Service) handleStream(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.handoff.Session(c.Request.Context(), id); err != nil {
		errors.Err(c, err)
		return
	}

	sub := s.rdb.Subscribe(c.Request.Context(), handoff.SessionChannel(id))
	defer sub.Close()
	ch := sub.Channel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

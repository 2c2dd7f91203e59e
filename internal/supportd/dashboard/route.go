package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/history"
)

func (s *Service) initRouter() {
	s.router.GET("/health", s.handleHealth)
	s.router.NoRoute(s.NoRoute)

	api := s.router.Group("/api/v1")
	{
		api.GET("/queue", s.handleQueue)
		api.GET("/agents", s.handleAgents)
		api.POST("/agents/online", s.handleAgentOnline)
		api.POST("/agents/offline", s.handleAgentOffline)
		api.GET("/session/:id", s.handleSession)
		api.POST("/session/:id/assign", s.handleAssign)
		api.POST("/session/:id/activate", s.handleActivate)
		api.POST("/session/:id/close", s.handleClose)
		api.GET("/session/:id/transcript", s.handleTranscript)
		api.GET("/stats", s.handleStats)
		api.GET("/history", s.handleHistory)
		api.GET("/history/:id", s.handleHistoryRecord)
		api.GET("/events", s.handleEvents)
	}

	s.initMCPRouter()
}

func (s *Service) initMCPRouter() {
	s.router.Any("/mcp", func(c *gin.Context) {
		s.mcpStreamableServer.ServeHTTP(c.Writer, c.Request)
	})
	s.router.Any("/sse", func(c *gin.Context) {
		s.mcpSSEServer.ServeHTTP(c.Writer, c.Request)
	})
	s.router.Any("/message", func(c *gin.Context) {
		s.mcpSSEServer.ServeHTTP(c.Writer, c.Request)
	})
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

func (s *Service) handleQueue(c *gin.Context) {
	queue, err := s.handoff.Queue(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(queue), "sessions": queue})
}

func (s *Service) handleAgents(c *gin.Context) {
	agents, err := s.handoff.OnlineAgents(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(agents), "agents": agents})
}

func (s *Service) handleAgentOnline(c *gin.Context) {
	req := struct {
		AgentID string `json:"agent_id" binding:"required"`
		Name    string `json:"name"`
	}{}
	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, errors.ErrInvalidArg("agent_id"))
		return
	}

	if err := s.handoff.MarkAgentOnline(c.Request.Context(), req.AgentID, req.Name); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": req.AgentID, "status": "online"})
}

func (s *Service) handleAgentOffline(c *gin.Context) {
	req := struct {
		AgentID string `json:"agent_id" binding:"required"`
	}{}
	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, errors.ErrInvalidArg("agent_id"))
		return
	}

	if err := s.handoff.MarkAgentOffline(c.Request.Context(), req.AgentID); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": req.AgentID, "status": "offline"})
}

func (s *Service) handleSession(c *gin.Context) {
	session, err := s.handoff.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Service) handleAssign(c *gin.Context) {
	req := struct {
		AgentID   string `json:"agent_id" binding:"required"`
		AgentName string `json:"agent_name"`
	}{}
	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, errors.ErrInvalidArg("agent_id"))
		return
	}

	id := c.Param("id")
	if err := s.handoff.AssignAgent(c.Request.Context(), id, req.AgentID, req.AgentName); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "agent_id": req.AgentID})
}

func (s *Service) handleActivate(c *gin.Context) {
	id := c.Param("id")
	if err := s.handoff.ActivateSession(c.Request.Context(), id); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "status": handoff.StatusActive})
}

// handleClose ends the session and archives its final state.
func (s *Service) handleClose(c *gin.Context) {
	req := struct {
		Resolution string `json:"resolution"`
		Rating     int    `json:"rating"`
	}{}
	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, errors.ErrInvalidArg("resolution"))
		return
	}
	if req.Resolution == "" {
		req.Resolution = handoff.ResolutionResolved
	}

	session, err := s.handoff.CloseSession(c.Request.Context(), c.Param("id"), req.Resolution, req.Rating)
	if err != nil {
		errors.Err(c, err)
		return
	}

	if err := s.history.Archive(session); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleTranscript exports a session transcript as JSON, gzip-compressed
// when format=gzip is requested.
func (s *Service) handleTranscript(c *gin.Context) {
	id := c.Param("id")

	messages, err := s.transcript(c, id)
	if err != nil {
		errors.Err(c, err)
		return
	}

	data, err := json.MarshalIndent(gin.H{"session_id": id, "messages": messages}, "", "  ")
	if err != nil {
		errors.Err(c, err)
		return
	}

	if strings.ToLower(c.Query("format")) != "gzip" {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	c.Writer.Header().Set("Content-Type", "application/gzip")
	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=transcript_%s.json.gz", id))

	zw := gzip.NewWriter(c.Writer)
	if _, err := zw.Write(data); err != nil {
		errors.Err(c, err)
		return
	}
	if err := zw.Close(); err != nil {
		errors.Err(c, err)
	}
}

// transcript prefers the live session and falls back to the archive.
func (s *Service) transcript(c *gin.Context, id string) ([]handoff.Message, error) {
	session, err := s.handoff.Session(c.Request.Context(), id)
	if err == nil {
		return session.Messages, nil
	}
	if errors.GetCode(err) != http.StatusNotFound {
		return nil, err
	}

	record, err := s.history.Get(id)
	if err != nil {
		return nil, err
	}
	return record.Transcript, nil
}

func (s *Service) handleStats(c *gin.Context) {
	report := s.stats.Snapshot()

	cacheSize, err := s.cache.Size(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}

	summary, err := s.history.Summarize()
	if err != nil {
		errors.Err(c, err)
		return
	}

	queue, err := s.handoff.Queue(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}

	agents, err := s.handoff.OnlineAgents(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cost":          report,
		"cache_entries": cacheSize,
		"queue_length":  len(queue),
		"agents_online": len(agents),
		"archive":       summary,
	})
}

func (s *Service) handleHistory(c *gin.Context) {
	q := struct {
		Category   string `form:"category"`
		Resolution string `form:"resolution"`
		Limit      int    `form:"limit"`
	}{}
	if err := c.BindQuery(&q); err != nil {
		errors.Err(c, err)
		return
	}

	records, err := s.history.List(history.Query{
		Category:   q.Category,
		Resolution: q.Resolution,
		Limit:      q.Limit,
	})
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "sessions": records})
}

func (s *Service) handleHistoryRecord(c *gin.Context) {
	record, err := s.history.Get(c.Param("id"))
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleEvents pushes operator notifications as server-sent events.
func (s *Service) handleEvents(c *gin.Context) {
	sub := s.rdb.Subscribe(c.Request.Context(), handoff.NotifyChannel)
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
			c.SSEvent("notification", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

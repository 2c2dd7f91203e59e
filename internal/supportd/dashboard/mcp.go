package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/conf"
	"github.com/birmarket/supportd/pkg/version"
)

func (s *Service) initMCPServer() {
	s.mcpServer = server.NewMCPServer(conf.AppName, version.Version)
	s.mcpServer.AddTool(QueueTool, s.handleMCPQueue)
	s.mcpServer.AddTool(SessionTool, s.handleMCPSession)
	s.mcpServer.AddTool(StatsTool, s.handleMCPStats)
	s.mcpServer.AddTool(CurrentTimeTool, s.handleMCPCurrentTime)
	s.mcpSSEServer = server.NewSSEServer(s.mcpServer)
	s.mcpStreamableServer = server.NewStreamableHTTPServer(s.mcpServer)
}

var QueueTool = mcp.NewTool(
	"query_queue",
	mcp.WithDescription(`List the customers currently waiting for a support operator, in queue order. Each line holds the session id, user name, detected language, category, priority and a preview of the question. Use this tool when asked who is waiting, how long the queue is, or which session to pick up next.`),
)

var SessionTool = mcp.NewTool(
	"query_session",
	mcp.WithDescription(`Load one support session with its full message transcript. Use this tool to read what the customer and the assistant already discussed before answering. Closed sessions are served from the archive.`),
	mcp.WithString("session_id", mcp.Description("The session id, as shown by query_queue."), mcp.Required()),
)

var StatsTool = mcp.NewTool(
	"query_stats",
	mcp.WithDescription(`Report the support floor statistics: queue length, operators online, assistant cost counters (LLM calls, cache hits, token savings, handoffs) and the closed-session archive summary. Use this for questions like "how busy are we" or "how much is the cache saving".`),
)

var CurrentTimeTool = mcp.NewTool(
	"current_time",
	mcp.WithDescription(`Return the current system time as an RFC3339 string with the local timezone. Use it to resolve relative time expressions like "today" or "last week" before querying the archive. No parameters.`),
)

func (s *Service) handleMCPQueue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queue, err := s.handoff.Queue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load queue")
		return errors.ErrMCPTool(err), nil
	}

	buf := &bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("%d sessions waiting\n", len(queue)))
	for i, session := range queue {
		preview := session.Query
		if len(preview) > 80 {
			preview = preview[:80]
		}
		buf.WriteString(fmt.Sprintf("%d. %s | %s | %s | %s/%s | %s\n",
			i+1, session.ID, session.UserName, session.Language,
			session.Category, session.Priority, preview))
	}
	return textResult(buf.String()), nil
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Service) handleMCPSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req SessionRequest
	if err := request.BindArguments(&req); err != nil {
		log.Error().Err(err).Msg("Failed to bind arguments")
		return errors.ErrMCPTool(err), nil
	}

	session, err := s.handoff.Session(ctx, req.SessionID)
	if err == nil {
		data, _ := json.MarshalIndent(session, "", "  ")
		return textResult(string(data)), nil
	}

	record, err := s.history.Get(req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session", req.SessionID).Msg("Failed to load session")
		return errors.ErrMCPTool(err), nil
	}
	data, _ := json.MarshalIndent(record, "", "  ")
	return textResult(string(data)), nil
}

func (s *Service) handleMCPStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queue, err := s.handoff.Queue(ctx)
	if err != nil {
		return errors.ErrMCPTool(err), nil
	}
	agents, err := s.handoff.OnlineAgents(ctx)
	if err != nil {
		return errors.ErrMCPTool(err), nil
	}
	summary, err := s.history.Summarize()
	if err != nil {
		return errors.ErrMCPTool(err), nil
	}

	data, _ := json.MarshalIndent(map[string]interface{}{
		"queue_length":  len(queue),
		"agents_online": len(agents),
		"cost":          s.stats.Snapshot(),
		"archive":       summary,
	}, "", "  ")
	return textResult(string(data)), nil
}

func (s *Service) handleMCPCurrentTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(time.Now().Local().Format(time.RFC3339)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

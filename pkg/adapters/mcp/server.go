// Package mcp exposes the guide as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/logging"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/socialsphere/guide/pkg/runner"
)

// DomainsURI is the resource listing the help domains.
const DomainsURI = "guide://domains"

// ChatResponse mirrors the HTTP /chat reply.
type ChatResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"Session to pass back on the next turn"`
	Response  string `json:"response" jsonschema_description:"Text to show the user"`
	Step      string `json:"step" jsonschema_description:"Dialogue step after this turn: menu, clarifying or answering"`
	Domain    string `json:"domain,omitempty" jsonschema_description:"Selected help domain, if any"`
	Turn      int    `json:"turn" jsonschema_description:"Number of turns processed in this session"`
}

// DomainInfo is one entry of the domains resource.
type DomainInfo struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Answers []string `json:"answers"`
}

// Engine is the part of guide.Engine the MCP server needs.
type Engine interface {
	Respond(ctx context.Context, sessionID, text string) (guide.Reply, error)
	Reset(ctx context.Context, sessionID string) (guide.Reply, error)
	Menu() string
	Table() domain.Table
}

// Server wraps the guide Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. logger may be nil.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("guide-mcp", strings.TrimSpace(guide.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send one user message to the SocialSphere help guide and get its reply. Type 'menu' to return to the main menu."),
		mcp.WithString("message", mcp.Required(), mcp.Description("What the user typed")),
		mcp.WithString("session_id", mcp.Description("Session from a previous reply; omit to start a new one")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	resetTool := mcp.NewTool("reset_session",
		mcp.WithDescription("Return a session to the main menu."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to reset")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(resetTool, mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("show_menu",
		mcp.WithDescription("Show the main menu of help topics."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(s.engine.Menu()), nil
	})
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResponse, error) {
	message, _ := args["message"].(string)
	sessionID, _ := args["session_id"].(string)

	clean, err := runner.SanitizeInput(message)
	if err != nil {
		s.logger.Warn("MCP Chat: Input rejected", "err", err, "size", len(message))
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	reply, err := s.engine.Respond(ctx, sessionID, clean)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	return toResponse(reply), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return ChatResponse{}, errors.New("session_id is required")
	}
	reply, err := s.engine.Reset(ctx, sessionID)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	return toResponse(reply), nil
}

func toResponse(r guide.Reply) ChatResponse {
	return ChatResponse{
		SessionID: r.SessionID,
		Response:  r.Text,
		Step:      string(r.Step),
		Domain:    r.Domain,
		Turn:      r.Turn,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DomainsURI, "Help domains",
		mcp.WithResourceDescription("Help topics the guide can answer, with their answer keys"),
		mcp.WithMIMEType("application/json"),
	), s.readDomains)
}

func (s *Server) readDomains(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	table := s.engine.Table()
	infos := make([]DomainInfo, 0, len(table.Domains))
	for _, d := range table.Domains {
		info := DomainInfo{Key: d.Key, Title: d.DisplayTitle()}
		for _, a := range d.Answers {
			info.Answers = append(info.Answers, a.Key)
		}
		infos = append(infos, info)
	}

	jsonBytes, err := json.Marshal(infos)
	if err != nil {
		return nil, fmt.Errorf("failed to encode domains: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DomainsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

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

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/sanitize"
	"github.com/aretw0/intake/pkg/dispatch"
	"github.com/aretw0/intake/pkg/domain"
)

const formURI = "intake://form"

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	SessionKey  string `json:"session_key"`
	Text        string `json:"text"`
	DisplayName string `json:"display_name,omitempty"`
}

// ReplyResponse is the structured result of send_message.
type ReplyResponse struct {
	Text     string   `json:"text" jsonschema_description:"The agent's reply"`
	Keyboard []string `json:"keyboard" jsonschema_description:"Suggested quick replies"`
	Document string   `json:"document,omitempty" jsonschema_description:"Path of an attached document, if any"`
}

// Server exposes the agent as an MCP server so an assistant can fill the
// form on a user's behalf.
type Server struct {
	handle    dispatch.Handler
	form      *domain.Form
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(handle dispatch.Handler, form *domain.Form, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		handle:    handle,
		form:      form,
		logger:    logger,
		mcpServer: server.NewMCPServer("intake-mcp", strings.TrimSpace(intake.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send one user message to the intake agent and get its reply. Start with \"start\" and follow the suggested quick replies."),
		mcp.WithString("session_key", mcp.Required(), mcp.Description("Identifies the conversation; reuse it for every message")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithString("display_name", mcp.Description("Name recorded with the submission (optional)")),
		mcp.WithOutputSchema[ReplyResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	s.mcpServer.AddTool(mcp.NewTool("describe_form",
		mcp.WithDescription("Get the questionnaire the agent collects."),
	), s.handleDescribeForm)
}

func (s *Server) handleSendMessage(ctx context.Context, _ mcp.CallToolRequest, args SendMessageArgs) (ReplyResponse, error) {
	key := strings.TrimSpace(args.SessionKey)
	if key == "" {
		return ReplyResponse{}, errors.New("session_key is required")
	}
	clean, err := sanitize.Input(args.Text)
	if err != nil {
		s.logger.Warn("MCP send_message: input rejected", "err", err, "size", len(args.Text))
		return ReplyResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	reply, err := s.handle(ctx, domain.Message{
		SessionKey: key,
		Text:       clean,
		Sender:     domain.Sender{DisplayName: args.DisplayName, ID: key},
		Timestamp:  time.Now(),
	})
	if err != nil {
		s.logger.Error("MCP send_message failed", "session_key", key, "err", err)
		return ReplyResponse{}, fmt.Errorf("send failed: %w", err)
	}

	out := ReplyResponse{Text: reply.Text, Keyboard: reply.Keyboard}
	if out.Keyboard == nil {
		out.Keyboard = []string{}
	}
	if reply.Document != nil {
		out.Document = reply.Document.Path
		if out.Text == "" {
			out.Text = reply.Document.Caption
		}
	}
	return out, nil
}

func (s *Server) formJSON() (string, error) {
	data, err := json.Marshal(map[string]any{"fields": s.form.Fields})
	if err != nil {
		return "", fmt.Errorf("failed to encode form: %w", err)
	}
	return string(data), nil
}

func (s *Server) handleDescribeForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.formJSON()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(formURI, "Intake Form Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.formJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      formURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

// Package mcp exposes the pipeline orchestrator as MCP tools, so an
// agent can drive the human-in-the-loop review programmatically.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Aviroop07/NL2DATA-sub000/internal/orchestrator"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	orch      *orchestrator.Orchestrator
}

func NewServer(orch *orchestrator.Orchestrator) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"NL2DATA Pipeline",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		orch: orch,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_description",
			mcp.WithDescription("Submit a requirements description and start a pipeline job"),
			mcp.WithString("description", mcp.Required(), mcp.Description("The natural-language requirements description")),
		),
		s.handleSubmit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"pipeline_status",
			mcp.WithDescription("Report the controller state, active checkpoint and completed checkpoints"),
		),
		s.handleStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"save_draft",
			mcp.WithDescription("Persist an edited payload for the active checkpoint without advancing"),
			mcp.WithString("type", mcp.Required(), mcp.Description("The active checkpoint type")),
			mcp.WithString("payload", mcp.Required(), mcp.Description("The edited payload as a JSON document")),
		),
		s.handleSaveDraft,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"proceed",
			mcp.WithDescription("Persist the payload and advance the pipeline to the next checkpoint"),
			mcp.WithString("type", mcp.Required(), mcp.Description("The active checkpoint type")),
			mcp.WithString("payload", mcp.Required(), mcp.Description("The reviewed payload as a JSON document")),
		),
		s.handleProceed,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"completed_checkpoint",
			mcp.WithDescription("Look up the recorded result of an earlier checkpoint"),
			mcp.WithString("type", mcp.Required(), mcp.Description("The checkpoint type to look up")),
		),
		s.handleCompleted,
	)
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	description, ok := args["description"].(string)
	if !ok || description == "" {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}

	job, err := s.orch.Submit(ctx, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to submit: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(job)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := map[string]any{
		"state":     s.orch.State(),
		"completed": s.orch.Completed(),
	}
	if job := s.orch.Job(); job != nil {
		status["job_id"] = job.ID
	}
	if active := s.orch.Active(); active != nil {
		status["active"] = active
	}
	if tick, ok := s.orch.LatestMessage(); ok {
		status["latest_message"] = tick.Message
	}

	jsonBytes, _ := json.Marshal(status)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleSaveDraft(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, payload, errResult := checkpointArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	if err := s.orch.SaveDraft(ctx, typ, payload); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save draft: %v", err)), nil
	}

	return mcp.NewToolResultText("Draft saved"), nil
}

func (s *Server) handleProceed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, payload, errResult := checkpointArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.orch.Proceed(ctx, typ, payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to proceed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCompleted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	typRaw, ok := args["type"].(string)
	if !ok || typRaw == "" {
		return mcp.NewToolResultError("Missing required parameter: type"), nil
	}

	entry, found := s.orch.FindCompleted(models.CheckpointType(typRaw))
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("No completed checkpoint of type %q", typRaw)), nil
	}

	jsonBytes, _ := json.Marshal(entry)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// checkpointArgs extracts the type and decoded payload arguments shared
// by save_draft and proceed.
func checkpointArgs(request mcp.CallToolRequest) (models.CheckpointType, any, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", nil, mcp.NewToolResultError("Invalid arguments type")
	}

	typRaw, ok := args["type"].(string)
	if !ok || typRaw == "" {
		return "", nil, mcp.NewToolResultError("Missing required parameter: type")
	}
	typ := models.CheckpointType(typRaw)
	if !typ.Valid() {
		return "", nil, mcp.NewToolResultError(fmt.Sprintf("Unknown checkpoint type %q", typRaw))
	}

	payloadRaw, ok := args["payload"].(string)
	if !ok || payloadRaw == "" {
		return "", nil, mcp.NewToolResultError("Missing required parameter: payload")
	}
	var payload any
	if err := json.Unmarshal([]byte(payloadRaw), &payload); err != nil {
		return "", nil, mcp.NewToolResultError(fmt.Sprintf("Payload is not valid JSON: %v", err))
	}

	return typ, payload, nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}

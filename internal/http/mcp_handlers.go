package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/refractionpoint/health-mcp-go/internal/tools"
)

// Server identity reported to MCP clients
const (
	ServerName      = "health-mcp"
	ServerVersion   = "1.0.0"
	ProtocolVersion = "2024-11-05"
)

// JSON-RPC 2.0 error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type jsonrpcRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

func (s *Server) handleMCPRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req jsonrpcRequest
	decoder := json.NewDecoder(r.Body)
	// Keep argument numbers verbatim so integer checks see the original text
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		s.writeJSONRPCError(w, nil, codeParseError, "Parse error", err.Error())
		return
	}

	// Validate JSON-RPC version
	if req.JSONRPC != "2.0" {
		s.writeJSONRPCError(w, req.ID, codeInvalidRequest, "Invalid Request", "jsonrpc must be '2.0'")
		return
	}

	// Notifications carry no id and get no JSON-RPC response
	if strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug("MCP notification received", "method", req.Method)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	switch req.Method {
	case "ping":
		s.writeJSONRPCSuccess(w, req.ID, map[string]interface{}{})
	case "initialize":
		s.handleInitialize(w, req.ID, req.Params)
	case "tools/list":
		s.handleToolsList(w, r, req.ID)
	case "tools/call":
		s.handleToolCall(w, r, req.ID, req.Params)
	default:
		s.writeJSONRPCError(w, req.ID, codeMethodNotFound, "Method not found", fmt.Sprintf("Unknown method: %s", req.Method))
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, id interface{}, params map[string]interface{}) {
	if clientInfo, ok := params["clientInfo"].(map[string]interface{}); ok {
		clientName, _ := clientInfo["name"].(string)
		clientVersion, _ := clientInfo["version"].(string)
		s.logger.Info("MCP client initializing", "client", clientName, "version", clientVersion)
	}

	s.writeJSONRPCSuccess(w, id, map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": false,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
	})
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request, id interface{}, params map[string]interface{}) {
	toolName, ok := params["name"].(string)
	if !ok || toolName == "" {
		s.writeJSONRPCError(w, id, codeInvalidParams, "Invalid params", "Missing or invalid 'name' parameter")
		return
	}

	arguments := map[string]interface{}{}
	if raw, present := params["arguments"]; present && raw != nil {
		args, ok := raw.(map[string]interface{})
		if !ok {
			s.writeJSONRPCError(w, id, codeInvalidParams, "Invalid params", "'arguments' must be an object")
			return
		}
		arguments = args
	}

	exposed, err := s.getToolsForRequest(r)
	if err != nil {
		s.writeJSONRPCError(w, id, codeInvalidParams, "Invalid params", err.Error())
		return
	}
	if !slices.Contains(exposed, toolName) {
		s.writeJSONRPCError(w, id, codeMethodNotFound, "Tool not found", fmt.Sprintf("Unknown tool: %s", toolName))
		return
	}

	ctx := s.contextFunc(r.Context())
	result, err := tools.CallTool(ctx, toolName, arguments)
	if err != nil {
		s.writeJSONRPCError(w, id, codeInternalError, "Tool execution error", err.Error())
		return
	}

	s.writeJSONRPCSuccess(w, id, result)
}

func (s *Server) handleToolsList(w http.ResponseWriter, r *http.Request, id interface{}) {
	toolNames, err := s.getToolsForRequest(r)
	if err != nil {
		s.writeJSONRPCError(w, id, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	toolList := make([]map[string]interface{}, 0, len(toolNames))
	for _, name := range toolNames {
		tool, ok := tools.GetTool(name)
		if !ok {
			continue
		}
		toolList = append(toolList, map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.Schema.InputSchema,
		})
	}

	s.writeJSONRPCSuccess(w, id, map[string]interface{}{
		"tools": toolList,
	})
}

func (s *Server) writeJSONRPCSuccess(w http.ResponseWriter, id interface{}, result interface{}) {
	rw := NewResponseWriter(w, s.logger)
	rw.WriteJSONRPCSuccess(id, result)
}

func (s *Server) writeJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data string) {
	rw := NewResponseWriter(w, s.logger)
	rw.WriteJSONRPCError(id, code, message, data)
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ResponseWriter wraps http.ResponseWriter with convenient JSON response methods
type ResponseWriter struct {
	w      http.ResponseWriter
	logger *slog.Logger
}

// NewResponseWriter creates a new ResponseWriter
func NewResponseWriter(w http.ResponseWriter, logger *slog.Logger) *ResponseWriter {
	return &ResponseWriter{
		w:      w,
		logger: logger,
	}
}

// rpcError is the error member of a JSON-RPC 2.0 response
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response; exactly one of Result and Error is set
type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func (rw *ResponseWriter) WriteJSON(status int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(status)

	encoder := json.NewEncoder(rw.w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		rw.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// WriteJSONRPCSuccess writes a successful JSON-RPC 2.0 response
func (rw *ResponseWriter) WriteJSONRPCSuccess(id interface{}, result interface{}) {
	rw.WriteJSON(http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// WriteJSONRPCError writes a JSON-RPC 2.0 error response
func (rw *ResponseWriter) WriteJSONRPCError(id interface{}, code int, message string, data string) {
	rw.WriteJSON(http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &rpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcalendar-mcp/internal/logging"
	"github.com/teemow/gcalendar-mcp/internal/tools"
)

// Router answers JSON-RPC messages. Tool listing and tool calls are served
// from the dispatcher; everything else is delegated to the mcp-go server.
type Router struct {
	mcp        *mcpserver.MCPServer
	dispatcher *tools.Dispatcher
	logger     *slog.Logger
}

// NewRouter creates a router. logger may be nil.
func NewRouter(mcpSrv *mcpserver.MCPServer, dispatcher *tools.Dispatcher, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{mcp: mcpSrv, dispatcher: dispatcher, logger: logger}
}

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

var nullID = json.RawMessage("null")

// IsToolMethod reports whether method is answered by the router itself.
func IsToolMethod(method string) bool {
	return method == string(mcp.MethodToolsList) || method == string(mcp.MethodToolsCall)
}

// HandleMessage answers one JSON-RPC message. It returns nil for
// notifications and for messages that need no reply.
func (r *Router) HandleMessage(ctx context.Context, raw []byte) []byte {
	var msg rpcMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.logger.Warn("Failed to parse message", logging.Err(err))
		return r.encode(rpcResponse{ID: nullID, Error: &rpcError{Code: mcp.PARSE_ERROR, Message: "Parse error"}})
	}

	if !IsToolMethod(msg.Method) || isNotification(msg.ID) {
		return r.delegate(ctx, raw)
	}
	if msg.JSONRPC != mcp.JSONRPC_VERSION {
		return r.encode(rpcResponse{ID: msg.ID, Error: &rpcError{Code: mcp.INVALID_REQUEST, Message: "Invalid JSON-RPC version"}})
	}

	r.logger.Debug("Handling request", logging.Method(msg.Method))

	switch msg.Method {
	case string(mcp.MethodToolsList):
		return r.encode(rpcResponse{ID: msg.ID, Result: mcp.ListToolsResult{Tools: r.dispatcher.Registry().MCPTools()}})
	default:
		req, err := decodeCall(msg.Params)
		if err != nil {
			return r.encode(rpcResponse{ID: msg.ID, Error: &rpcError{Code: mcp.INVALID_PARAMS, Message: err.Error()}})
		}
		env := r.dispatcher.Dispatch(ctx, req)
		return r.encode(rpcResponse{ID: msg.ID, Result: env.CallToolResult()})
	}
}

func (r *Router) delegate(ctx context.Context, raw []byte) []byte {
	resp := r.mcp.HandleMessage(ctx, raw)
	if resp == nil {
		return nil
	}
	out, err := json.Marshal(resp)
	if err != nil {
		r.logger.Error("Failed to encode response", logging.Err(err))
		return nil
	}
	return out
}

func (r *Router) encode(resp rpcResponse) []byte {
	resp.JSONRPC = mcp.JSONRPC_VERSION
	out, err := json.Marshal(resp)
	if err != nil {
		r.logger.Error("Failed to encode response", logging.Err(err))
		out, _ = json.Marshal(rpcResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      resp.ID,
			Error:   &rpcError{Code: mcp.INTERNAL_ERROR, Message: "Internal error"},
		})
	}
	return out
}

// decodeCall extracts the tool request. Absent or null arguments stay nil so
// the dispatcher can tell them apart from an empty object.
func decodeCall(params json.RawMessage) (tools.Request, error) {
	var p callParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return tools.Request{}, err
		}
	}

	req := tools.Request{Name: p.Name}
	if len(p.Arguments) == 0 || bytes.Equal(p.Arguments, nullID) {
		return req, nil
	}
	if err := json.Unmarshal(p.Arguments, &req.Arguments); err != nil {
		return tools.Request{}, err
	}
	return req, nil
}

func isNotification(id json.RawMessage) bool {
	return len(id) == 0
}

package a2a

import (
	"encoding/json"
)

// Version is the JSON-RPC protocol version the agent speaks.
const Version = "2.0"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Methods the agent accepts.
const (
	MethodMessageSend = "message/send"
	MethodTasksGet    = "tasks/get"
	MethodTasksCancel = "tasks/cancel"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
	ID      any       `json:"id,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// NewResponse builds a success response for the given request id.
func NewResponse(id, result any) Response {
	return Response{JSONRPC: Version, Result: result, ID: id}
}

// NewErrorResponse builds an error response for the given request id.
func NewErrorResponse(id any, code int, message string) Response {
	return Response{JSONRPC: Version, Error: &RPCError{Code: code, Message: message}, ID: id}
}

// MessageSendParams are the parameters of a message/send call.
type MessageSendParams struct {
	Message       Message        `json:"message"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams are the parameters of tasks/get and tasks/cancel calls.
type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength int    `json:"historyLength,omitempty"`
}

// Call is the closed set of requests the agent understands. Dispatching
// over this set keeps method handling exhaustive at compile time instead
// of relying on a runtime registration table.
type Call interface{ isCall() }

// MessageSend asks the agent to accept a new translation message.
type MessageSend struct{ Params MessageSendParams }

// TasksGet asks for the current view of a task.
type TasksGet struct{ Params TaskQueryParams }

// TasksCancel asks the agent to cancel a task.
type TasksCancel struct{ Params TaskQueryParams }

func (MessageSend) isCall() {}
func (TasksGet) isCall()    {}
func (TasksCancel) isCall() {}

// ParseCall validates a request envelope and decodes its params into the
// matching call variant. Envelope or method problems surface as RPCError
// values with the standard codes.
func ParseCall(req *Request) (Call, *RPCError) {
	if req.JSONRPC != Version || req.Method == "" {
		return nil, &RPCError{Code: CodeInvalidRequest, Message: "invalid JSON-RPC request"}
	}

	switch req.Method {
	case MethodMessageSend:
		var params MessageSendParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		if len(params.Message.Parts) == 0 {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "message must contain at least one part"}
		}
		return MessageSend{Params: params}, nil

	case MethodTasksGet:
		var params TaskQueryParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		if params.ID == "" {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "task id is required"}
		}
		return TasksGet{Params: params}, nil

	case MethodTasksCancel:
		var params TaskQueryParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		if params.ID == "" {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "task id is required"}
		}
		return TasksCancel{Params: params}, nil
	}

	return nil, &RPCError{Code: CodeMethodNotFound, Message: "unknown method: " + req.Method}
}

func unmarshalParams(raw json.RawMessage, out any) *RPCError {
	if len(raw) == 0 {
		return &RPCError{Code: CodeInvalidParams, Message: "params are required"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RPCError{Code: CodeInvalidParams, Message: "malformed params: " + err.Error()}
	}
	return nil
}

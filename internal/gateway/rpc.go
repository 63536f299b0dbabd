package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dohr-michael/lingo/internal/a2a"
	"github.com/dohr-michael/lingo/internal/jobs"
	"github.com/dohr-michael/lingo/internal/results"
)

// handleRPC serves the A2A JSON-RPC endpoint. A malformed envelope is a
// transport-level 400; everything past the envelope is a 200 carrying
// either a result or a JSON-RPC error object.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req a2a.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, a2a.NewErrorResponse(nil, a2a.CodeParseError, "malformed JSON-RPC request"))
		return
	}

	call, rpcErr := a2a.ParseCall(&req)
	if rpcErr != nil {
		status := http.StatusOK
		if rpcErr.Code == a2a.CodeInvalidRequest {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, a2a.Response{JSONRPC: a2a.Version, Error: rpcErr, ID: req.ID})
		return
	}

	var (
		result any
		err    *a2a.RPCError
	)
	switch c := call.(type) {
	case a2a.MessageSend:
		result, err = s.rpcMessageSend(r, c)
	case a2a.TasksGet:
		result, err = s.rpcTasksGet(r, c)
	case a2a.TasksCancel:
		result = s.rpcTasksCancel(c)
	}

	if err != nil {
		writeJSON(w, http.StatusOK, a2a.Response{JSONRPC: a2a.Version, Error: err, ID: req.ID})
		return
	}
	writeJSON(w, http.StatusOK, a2a.NewResponse(req.ID, result))
}

func (s *Server) rpcMessageSend(r *http.Request, c a2a.MessageSend) (any, *a2a.RPCError) {
	msg := c.Params.Message

	text, ok := msg.TextContent()
	if !ok || text == "" {
		return nil, &a2a.RPCError{Code: a2a.CodeInvalidParams, Message: "message must contain a text part"}
	}

	payload := &jobs.Payload{
		TaskID:          a2a.GenerateTaskID(),
		DocumentContent: text,
		TargetLanguage:  msg.TargetLanguage(s.defaultLanguage),
		MessageID:       msg.MessageID,
	}

	if err := s.submit(r.Context(), payload); err != nil {
		slog.Error("submission failed", "task_id", payload.TaskID, "error", err)
		return nil, &a2a.RPCError{Code: a2a.CodeInternalError, Message: "failed to queue task"}
	}

	reply := a2a.Message{
		Role:      a2a.RoleAgent,
		Parts:     []a2a.Part{a2a.TextPart("Task received. A worker will process it shortly.")},
		MessageID: uuid.New().String(),
		Kind:      "message",
	}
	return a2a.NewTask(payload.TaskID, a2a.StateWorking, &reply), nil
}

func (s *Server) rpcTasksGet(r *http.Request, c a2a.TasksGet) (any, *a2a.RPCError) {
	rec, err := s.results.Get(r.Context(), c.Params.ID)
	if err != nil {
		slog.Error("result lookup failed", "task_id", c.Params.ID, "error", err)
		return nil, &a2a.RPCError{Code: a2a.CodeInternalError, Message: "failed to look up task"}
	}

	// No record yet means the task is still in flight; that is the only
	// in-progress signal this design has.
	if rec == nil {
		return a2a.WorkingTask(c.Params.ID), nil
	}

	state := a2a.StateCompleted
	if rec.Status == results.StatusFailed {
		state = a2a.StateFailed
	}
	return a2a.TerminalTask(rec.TaskID, state, rec.ArtifactContent), nil
}

// rpcTasksCancel is advisory: it reports a cancelled view but does not
// reach into the queue or a worker already processing the message.
func (s *Server) rpcTasksCancel(c a2a.TasksCancel) any {
	return a2a.NewTask(c.Params.ID, a2a.StateCancelled, nil)
}

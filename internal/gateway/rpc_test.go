package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dohr-michael/lingo/internal/a2a"
	"github.com/dohr-michael/lingo/internal/jobs"
	"github.com/dohr-michael/lingo/internal/results"
)

func decodeRPC(t *testing.T, body *json.Decoder) (a2a.Response, *a2a.Task) {
	t.Helper()

	var resp struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
		Error   *a2a.RPCError   `json:"error"`
		ID      any             `json:"id"`
	}
	if err := body.Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	out := a2a.Response{JSONRPC: resp.JSONRPC, Error: resp.Error, ID: resp.ID}
	if resp.Error != nil {
		return out, nil
	}

	var task a2a.Task
	if err := json.Unmarshal(resp.Result, &task); err != nil {
		t.Fatalf("decode result task: %v", err)
	}
	return out, &task
}

func TestRPC_MessageSend(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/", `{
		"jsonrpc": "2.0",
		"method": "message/send",
		"params": {"message": {
			"role": "user",
			"parts": [
				{"kind": "text", "text": "Hello"},
				{"kind": "data", "data": {"target_language": "es"}}
			],
			"messageId": "m-1",
			"kind": "message"
		}},
		"id": "1"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	resp, task := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if task.Status.State != a2a.StateWorking {
		t.Fatalf("state = %s, want working", task.Status.State)
	}
	if task.ID == "" || task.ContextID == "" {
		t.Fatalf("missing ids: %+v", task)
	}

	// Exactly one enqueue, carrying the normalized payload.
	d, err := env.queue.Receive(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	payload, err := jobs.Decode(d.Body)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TaskID != task.ID {
		t.Fatalf("payload task id = %s, task id = %s", payload.TaskID, task.ID)
	}
	if payload.DocumentContent != "Hello" || payload.TargetLanguage != "es" {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.MessageID != "m-1" {
		t.Fatalf("message id = %s", payload.MessageID)
	}
}

func TestRPC_MessageSend_DefaultLanguage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/", `{
		"jsonrpc": "2.0",
		"method": "message/send",
		"params": {"message": {"role": "user", "parts": [{"kind": "text", "text": "Hi"}]}},
		"id": 1
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	d, err := env.queue.Receive(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	payload, err := jobs.Decode(d.Body)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TargetLanguage != "el" {
		t.Fatalf("target language = %s, want configured default", payload.TargetLanguage)
	}
}

func TestRPC_MessageSend_MissingText(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/", `{
		"jsonrpc": "2.0",
		"method": "message/send",
		"params": {"message": {"role": "user", "parts": [{"kind": "data", "data": {"target_language": "es"}}]}},
		"id": 1
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	resp, _ := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error == nil || resp.Error.Code != a2a.CodeInvalidParams {
		t.Fatalf("error = %+v, want invalid params", resp.Error)
	}

	// Validation failures must not enqueue anything.
	if _, err := env.queue.Receive(context.Background(), time.Minute); err == nil {
		t.Fatal("expected empty queue after rejected submission")
	}
}

func TestRPC_MalformedEnvelope(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	resp, _ := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error == nil || resp.Error.Code != a2a.CodeParseError {
		t.Fatalf("error = %+v, want parse error", resp.Error)
	}
}

func TestRPC_UnknownMethod(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/", `{"jsonrpc":"2.0","method":"tasks/list","params":{},"id":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	resp, _ := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error == nil || resp.Error.Code != a2a.CodeMethodNotFound {
		t.Fatalf("error = %+v, want method not found", resp.Error)
	}
}

func TestRPC_TasksGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// In flight: synthesized working view.
	w := env.do(t, http.MethodPost, "/", `{"jsonrpc":"2.0","method":"tasks/get","params":{"id":"task_7"},"id":1}`)
	resp, task := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if task.Status.State != a2a.StateWorking {
		t.Fatalf("state = %s, want working", task.Status.State)
	}

	rec := &results.Record{TaskID: "task_7", Status: results.StatusCompleted, ArtifactContent: "Hola", ProcessedAt: 1}
	if err := env.results.Put(ctx, rec); err != nil {
		t.Fatalf("put record: %v", err)
	}

	w = env.do(t, http.MethodPost, "/", `{"jsonrpc":"2.0","method":"tasks/get","params":{"id":"task_7"},"id":2}`)
	resp, task = decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if task.Status.State != a2a.StateCompleted {
		t.Fatalf("state = %s, want completed", task.Status.State)
	}
	if len(task.Artifacts) != 1 {
		t.Fatalf("artifacts = %d, want 1", len(task.Artifacts))
	}
	text, ok := a2a.Message{Parts: task.Artifacts[0].Parts}.TextContent()
	if !ok || text != "Hola" {
		t.Fatalf("artifact text = %q", text)
	}
}

func TestRPC_TasksGet_FailedRecord(t *testing.T) {
	env := newTestEnv(t)

	rec := &results.Record{TaskID: "task_8", Status: results.StatusFailed, ProcessedAt: 1}
	if err := env.results.Put(context.Background(), rec); err != nil {
		t.Fatalf("put record: %v", err)
	}

	w := env.do(t, http.MethodPost, "/", `{"jsonrpc":"2.0","method":"tasks/get","params":{"id":"task_8"},"id":1}`)
	resp, task := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if task.Status.State != a2a.StateFailed {
		t.Fatalf("state = %s, want failed", task.Status.State)
	}
	if len(task.Artifacts) != 0 {
		t.Fatal("failed task must not carry artifacts")
	}
}

func TestRPC_TasksCancel_Advisory(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/execute_task",
		`{"envelope":{"task_id":"task_5"},"parts":{"document_content":"Hello"}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/", `{"jsonrpc":"2.0","method":"tasks/cancel","params":{"id":"task_5"},"id":1}`)
	resp, task := decodeRPC(t, json.NewDecoder(w.Body))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if task.Status.State != a2a.StateCancelled {
		t.Fatalf("state = %s, want cancelled", task.Status.State)
	}

	// Advisory only: the queued message is untouched.
	d, err := env.queue.Receive(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	payload, err := jobs.Decode(d.Body)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.TaskID != "task_5" {
		t.Fatalf("payload task id = %s", payload.TaskID)
	}
}

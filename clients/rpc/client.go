// Package rpc is a small JSON-RPC 2.0 client for the lingo gateway.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dohr-michael/lingo/internal/a2a"
)

// Client talks to a gateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	nextID  atomic.Int64
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// RPCError is a JSON-RPC error returned by the gateway.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": a2a.Version,
		"method":  method,
		"params":  params,
		"id":      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// SendMessage submits a translation request and returns the created task.
func (c *Client) SendMessage(ctx context.Context, text, targetLanguage string) (*a2a.Task, error) {
	msg := a2a.Message{
		Role:      a2a.RoleUser,
		MessageID: uuid.New().String(),
		Kind:      "message",
		Parts:     []a2a.Part{a2a.TextPart(text)},
	}
	if targetLanguage != "" {
		msg.Parts = append(msg.Parts, a2a.DataPart(map[string]any{"target_language": targetLanguage}))
	}

	var task a2a.Task
	if err := c.call(ctx, a2a.MethodMessageSend, a2a.MessageSendParams{Message: msg}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches the current view of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*a2a.Task, error) {
	var task a2a.Task
	if err := c.call(ctx, a2a.MethodTasksGet, a2a.TaskQueryParams{ID: taskID}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CancelTask requests cancellation of a task. Cancellation is advisory:
// a worker already holding the message still finishes it.
func (c *Client) CancelTask(ctx context.Context, taskID string) (*a2a.Task, error) {
	var task a2a.Task
	if err := c.call(ctx, a2a.MethodTasksCancel, a2a.TaskQueryParams{ID: taskID}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// WaitForCompletion polls the task until it reaches a terminal state or
// ctx expires.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string, pollInterval time.Duration) (*a2a.Task, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		task, err := c.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if task.Status.State.Terminal() {
			return task, nil
		}

		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}

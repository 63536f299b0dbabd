package rpc

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dohr-michael/lingo/internal/a2a"
	"github.com/dohr-michael/lingo/internal/gateway"
	"github.com/dohr-michael/lingo/internal/queue"
	"github.com/dohr-michael/lingo/internal/results"
	"github.com/dohr-michael/lingo/internal/translator"
	"github.com/dohr-michael/lingo/internal/worker"
)

type fixture struct {
	client *Client
	queue  *queue.RedisQueue
	store  *results.FileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q := queue.NewRedisQueue(rdb, "translation-jobs")
	store := results.NewFileStore(t.TempDir())

	server := gateway.NewServer(gateway.Options{
		Host:    "127.0.0.1",
		Port:    0,
		Queue:   q,
		Results: store,
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &fixture{client: New(ts.URL), queue: q, store: store}
}

// Submit through the client, let a worker drain the queue, poll until
// the translated artifact comes back.
func TestClient_EndToEnd(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	task, err := fx.client.SendMessage(ctx, "hello world", "es")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if task.Status.State != a2a.StateWorking {
		t.Fatalf("state = %s, want working", task.Status.State)
	}

	provider := translator.ProviderFunc(func(_ context.Context, text, lang string) (string, error) {
		return "[" + lang + "] " + strings.ToUpper(text), nil
	})
	w := worker.New(fx.queue, fx.store, provider, worker.Config{PollInterval: 10 * time.Millisecond})

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go w.Run(workerCtx)

	done, err := fx.client.WaitForCompletion(ctx, task.ID, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}
	if done.Status.State != a2a.StateCompleted {
		t.Fatalf("state = %s, want completed", done.Status.State)
	}
	if len(done.Artifacts) != 1 || len(done.Artifacts[0].Parts) != 1 {
		t.Fatalf("artifacts = %+v", done.Artifacts)
	}
	if got := done.Artifacts[0].Parts[0].Text; got != "[es] HELLO WORLD" {
		t.Fatalf("artifact text = %q", got)
	}
}

func TestClient_GetUnknownTaskReadsAsWorking(t *testing.T) {
	fx := newFixture(t)

	task, err := fx.client.GetTask(context.Background(), "task_unknown")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Status.State != a2a.StateWorking {
		t.Fatalf("state = %s, want working", task.Status.State)
	}
}

func TestClient_SendMessageWithoutText(t *testing.T) {
	fx := newFixture(t)

	msg := a2a.Message{
		Role:  a2a.RoleUser,
		Kind:  "message",
		Parts: []a2a.Part{a2a.DataPart(map[string]any{"target_language": "es"})},
	}
	var task a2a.Task
	err := fx.client.call(context.Background(), a2a.MethodMessageSend, a2a.MessageSendParams{Message: msg}, &task)
	if err == nil {
		t.Fatal("expected error for message without text")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error type = %T", err)
	}
	if rpcErr.Code != a2a.CodeInvalidParams {
		t.Fatalf("code = %d, want %d", rpcErr.Code, a2a.CodeInvalidParams)
	}
}

func TestClient_CancelAdvisory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	task, err := fx.client.SendMessage(ctx, "hello", "fr")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	cancelled, err := fx.client.CancelTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CancelTask: %v", err)
	}
	if cancelled.Status.State != a2a.StateCancelled {
		t.Fatalf("state = %s, want cancelled", cancelled.Status.State)
	}

	// The message is still in the queue: cancellation does not revoke work.
	if _, err := fx.queue.Receive(ctx, time.Minute); err != nil {
		t.Fatalf("receive after cancel: %v", err)
	}
}

package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewQueue(client), mr
}

func TestQueue_Enqueue(t *testing.T) {
	q, mr := setupQueue(t)
	ctx := context.Background()

	task := NewWelcomeEmailTask(7, "ada@example.com", "Ada Lovelace")
	require.NoError(t, q.Enqueue(ctx, task))

	raw, err := mr.Lpop(QueueKey)
	require.NoError(t, err)

	var stored Task
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, TypeWelcomeEmail, stored.Type)
	assert.Equal(t, task.ID, stored.ID)

	var payload EmailPayload
	require.NoError(t, json.Unmarshal(stored.Payload, &payload))
	assert.Equal(t, uint(7), payload.UserID)
	assert.Equal(t, "ada@example.com", payload.Email)
	assert.Equal(t, "Ada Lovelace", payload.Name)
}

func TestQueue_Enqueue_NilClient(t *testing.T) {
	q := NewQueue(nil)
	err := q.Enqueue(context.Background(), NewVerificationEmailTask(1, "a@b.c"))
	assert.NoError(t, err)
}

func TestQueue_Dispatch(t *testing.T) {
	q, _ := setupQueue(t)

	processed := make(chan Task, 1)
	q.Register(TypeVerificationEmail, func(ctx context.Context, task Task) error {
		processed <- task
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go q.Run(ctx)

	task := NewVerificationEmailTask(3, "grace@example.com")
	require.NoError(t, q.Enqueue(ctx, task))

	select {
	case got := <-processed:
		assert.Equal(t, task.ID, got.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not processed")
	}
}

func TestQueue_Dispatch_UnhandledType(t *testing.T) {
	q, _ := setupQueue(t)

	// No handler registered; dispatch must not panic.
	raw, err := json.Marshal(NewWelcomeEmailTask(1, "x@y.z", "X"))
	require.NoError(t, err)
	q.dispatch(context.Background(), raw)
}

func TestQueue_Dispatch_Malformed(t *testing.T) {
	q, _ := setupQueue(t)
	q.dispatch(context.Background(), []byte("not json"))
}

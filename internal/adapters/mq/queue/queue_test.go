package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/matchmint/matchmint/internal/adapters/mq/queue"
	"github.com/matchmint/matchmint/internal/domain/model"
)

func job(id string) queue.Job {
	return queue.Job{
		ID:     id,
		Ticket: model.Ticket{ID: id},
		Reply:  make(chan queue.Result, 1),
	}
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(4))
	defer q.Close()

	ctx := context.Background()
	if ok := q.Enqueue(ctx, job("a")); !ok {
		t.Fatal("enqueue rejected with free capacity")
	}
	if got := q.Len(ctx); got != 1 {
		t.Fatalf("queue length %d, want 1", got)
	}

	select {
	case got := <-q.Dequeue(ctx):
		if got.ID != "a" {
			t.Fatalf("dequeued job %q, want a", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue timed out")
	}
}

func TestEnqueueBackpressure(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(1))
	defer q.Close()

	ctx := context.Background()
	if ok := q.Enqueue(ctx, job("a")); !ok {
		t.Fatal("first enqueue rejected")
	}
	if ok := q.Enqueue(ctx, job("b")); ok {
		t.Fatal("enqueue beyond capacity accepted")
	}
}

func TestCloseStopsIntake(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(2))

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Fatal("queue does not report closed")
	}
	if ok := q.Enqueue(context.Background(), job("late")); ok {
		t.Fatal("enqueue accepted after close")
	}
	// Double close is a no-op.
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDequeueChannelClosesAfterDrain(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(2))
	ctx := context.Background()

	q.Enqueue(ctx, job("a"))
	q.Close()

	ch := q.Dequeue(ctx)
	if got, ok := <-ch; !ok || got.ID != "a" {
		t.Fatalf("expected buffered job before close, got %v ok=%v", got.ID, ok)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected extra job")
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue channel not closed after drain")
	}
}

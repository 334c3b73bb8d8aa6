package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matchmint/matchmint/internal/adapters/mq/queue"
	"github.com/matchmint/matchmint/internal/adapters/mq/worker"
	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// stubMinter returns a canned outcome and counts invocations.
type stubMinter struct {
	uri   string
	err   error
	calls atomic.Int64
}

func (s *stubMinter) Mint(_ context.Context, t *model.Ticket) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.uri + "/" + t.ID, nil
}

func submit(t *testing.T, q *queue.InMemoryQueue, id string) queue.Job {
	t.Helper()
	j := queue.Job{
		ID:     id,
		Ticket: model.Ticket{ID: id},
		Reply:  make(chan queue.Result, 1),
	}
	if ok := q.Enqueue(context.Background(), j); !ok {
		t.Fatalf("enqueue %s rejected", id)
	}
	return j
}

func TestPoolDeliversResults(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(8))
	defer q.Close()

	m := &stubMinter{uri: "https://ipfs.io/ipfs/QmTest"}
	p := worker.NewPool(3, q, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	if p.Size() != 3 {
		t.Fatalf("pool size %d, want 3", p.Size())
	}

	jobs := []queue.Job{submit(t, q, "a"), submit(t, q, "b"), submit(t, q, "c")}
	for _, j := range jobs {
		select {
		case res := <-j.Reply:
			if res.Err != nil {
				t.Fatalf("job %s failed: %v", j.ID, res.Err)
			}
			want := "https://ipfs.io/ipfs/QmTest/" + j.ID
			if res.TokenURI != want {
				t.Fatalf("job %s uri %q, want %q", j.ID, res.TokenURI, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("job %s result timed out", j.ID)
		}
	}
	if got := m.calls.Load(); got != 3 {
		t.Fatalf("minter ran %d times, want 3", got)
	}
}

func TestPoolPropagatesMintErrors(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(2))
	defer q.Close()

	wantErr := errors.New("publish exploded")
	p := worker.NewPool(1, q, &stubMinter{err: wantErr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	j := submit(t, q, "boom")
	select {
	case res := <-j.Reply:
		if !errors.Is(res.Err, wantErr) {
			t.Fatalf("got error %v, want %v", res.Err, wantErr)
		}
		if res.TokenURI != "" {
			t.Fatalf("failed job carried a token uri %q", res.TokenURI)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error result timed out")
	}
}

func TestWorkerShutdown(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(1))
	defer q.Close()

	w := worker.NewWorker(q, &stubMinter{uri: "u"}, worker.WithName("solo"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	shutdownCtx, sc := context.WithTimeout(context.Background(), time.Second)
	defer sc()
	if err := w.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/ports"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []ports.Message
	fail  map[string]bool
	block chan struct{}
	done  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fail: map[string]bool{}, done: make(chan struct{}, 64)}
}

func (n *recordingNotifier) Send(ctx context.Context, msg ports.Message) error {
	defer func() { n.done <- struct{}{} }()
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n.fail[msg.To] {
		return errors.New("smtp: connection refused")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []ports.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Message(nil), n.sent...)
}

func (n *recordingNotifier) waitFor(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-n.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, count)
		}
	}
}

func TestDispatcher_DeliversInRecipientOrder(t *testing.T) {
	n := newRecordingNotifier()
	d := NewDispatcher(n, Options{Workers: 3, Buffer: 30}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		d.Enqueue(ports.Message{ID: fmt.Sprint(i), To: "alice@example.com", Kind: "booking_user"})
	}
	n.waitFor(t, 5)

	msgs := n.messages()
	if len(msgs) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.ID != fmt.Sprint(i) {
			t.Fatalf("out of order delivery: %+v", msgs)
		}
	}
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	n := newRecordingNotifier()
	n.fail["broken@example.com"] = true
	d := NewDispatcher(n, Options{Workers: 1, Buffer: 4}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Message{ID: "1", To: "broken@example.com"})
	d.Enqueue(ports.Message{ID: "2", To: "ok@example.com"})
	n.waitFor(t, 2)

	if msgs := n.messages(); len(msgs) != 1 || msgs[0].ID != "2" {
		t.Fatalf("expected only the healthy message delivered, got %+v", msgs)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	n := newRecordingNotifier()
	n.block = make(chan struct{})
	d := NewDispatcher(n, Options{Workers: 1, Buffer: 1}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.Enqueue(ports.Message{ID: fmt.Sprint(i), To: "alice@example.com"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("Enqueue blocked on a full queue")
	}

	close(n.block)
	cancel()
	d.Wait()
}

func TestDispatcher_SendTimeout(t *testing.T) {
	n := newRecordingNotifier()
	n.block = make(chan struct{})
	d := NewDispatcher(n, Options{Workers: 1, Buffer: 2, SendTimeout: 20 * time.Millisecond}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Message{ID: "slow", To: "alice@example.com"})
	n.waitFor(t, 1)

	if msgs := n.messages(); len(msgs) != 0 {
		t.Fatalf("timed out send must not count as delivered: %+v", msgs)
	}
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	d := NewDispatcher(newRecordingNotifier(), Options{Workers: 4}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("workers did not stop after cancel")
	}
}

func TestDispatcher_ShardIndexIsCaseInsensitive(t *testing.T) {
	d := NewDispatcher(newRecordingNotifier(), Options{Workers: 8}, zerolog.Nop())
	if d.shardIndex("Alice@Example.com") != d.shardIndex("alice@example.com") {
		t.Fatalf("recipient casing must not change the shard")
	}
}

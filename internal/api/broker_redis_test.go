package api

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisBroker(t *testing.T) *RedisBroker {
	t.Helper()
	srv := miniredis.RunT(t)
	b, err := NewRedisBroker("redis://" + srv.Addr())
	if err != nil {
		t.Fatalf("NewRedisBroker: %v", err)
	}
	return b
}

func TestRedisBrokerPublishSubscribe(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("opt1")
	defer b.Unsubscribe("opt1", ch)

	b.Publish("opt1", SSEEvent{Type: "optimization.completed", Data: map[string]any{"id": "opt1"}})

	select {
	case got := <-ch:
		if got.Type != "optimization.completed" {
			t.Fatalf("got type %s", got.Type)
		}
		if got.Data["id"].(string) != "opt1" {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestRedisBrokerPublishAfterUnsubscribe(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("opt2")
	b.Unsubscribe("opt2", ch)

	// A publish after the client is gone must not reach the closed
	// channel or crash the broker.
	b.Publish("opt2", SSEEvent{Type: "optimization.completed"})

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received event after unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}

	// Unsubscribing twice is harmless.
	b.Unsubscribe("opt2", ch)
}

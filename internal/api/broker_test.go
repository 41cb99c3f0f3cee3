package api

import (
    "testing"
    "time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
    b := NewBroker()
    topic := "opt1"
    ch := b.Subscribe(topic)
    defer func() { recover() }() // ignore close panic if already closed

    evt := SSEEvent{Type: "optimization.completed", Data: map[string]any{"id": "opt1"}}
    b.Publish(topic, evt)

    select {
    case got := <-ch:
        if got.Type != evt.Type { t.Fatalf("got type %s, want %s", got.Type, evt.Type) }
        if got.Data["id"].(string) != "opt1" { t.Fatalf("bad payload: %+v", got.Data) }
    case <-time.After(200 * time.Millisecond):
        t.Fatal("timeout waiting for event")
    }

    b.Unsubscribe(topic, ch)
    select {
    case _, ok := <-ch:
        if ok { t.Fatal("channel should be closed after unsubscribe") }
    case <-time.After(50 * time.Millisecond):
        // acceptable if already drained and closed
    }
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
    b := NewBroker()
    ch := b.Subscribe("opt2")
    defer b.Unsubscribe("opt2", ch)
    for i := 0; i < 20; i++ {
        b.Publish("opt2", SSEEvent{Type: "tick"})
    }
    // Buffered at 8; extra events are dropped, not blocked on.
    if n := len(ch); n != 8 {
        t.Fatalf("buffered = %d, want 8", n)
    }
}

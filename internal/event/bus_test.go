package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/session"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeSessionStarted, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeSessionStarted, func(e Event) {
		received = e
	})

	bus.Publish(NewSessionStartedEvent("s1", `/cook testing "x"`, "testing", "", 5))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	started, ok := received.(SessionStartedEvent)
	if !ok {
		t.Fatalf("received %T, want SessionStartedEvent", received)
	}
	if started.SessionID != "s1" || started.Items != 5 {
		t.Errorf("event = %+v", started)
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus(nil)
	called := false
	bus.Subscribe(TypeSessionFinished, func(e Event) { called = true })

	bus.Publish(newBaseEvent(TypeSessionStarted))

	if called {
		t.Error("handler for a different type should not be called")
	}
}

func TestBus_SubscribeAllOrdering(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "wildcard") })
	bus.Subscribe("x", func(e Event) { order = append(order, "specific-1") })
	bus.Subscribe("x", func(e Event) { order = append(order, "specific-2") })

	bus.Publish(newBaseEvent("x"))

	want := "specific-1,specific-2,wildcard"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("dispatch order = %s, want %s", got, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	count := 0
	keep := bus.Subscribe("x", func(e Event) { count++ })
	drop := bus.Subscribe("x", func(e Event) { count += 10 })

	if !bus.Unsubscribe(drop) {
		t.Fatal("Unsubscribe() = false, want true")
	}
	if bus.Unsubscribe(drop) {
		t.Error("second Unsubscribe() should report false")
	}
	if bus.Unsubscribe("missing") {
		t.Error("Unsubscribe(missing) should report false")
	}

	bus.Publish(newBaseEvent("x"))
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if keep == drop {
		t.Error("subscription IDs should be unique")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe("a", func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear, want 0", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, "ERROR"))

	called := false
	bus.Subscribe("x", func(e Event) { panic("boom") })
	bus.Subscribe("x", func(e Event) { called = true })

	bus.Publish(newBaseEvent("x"))

	if !called {
		t.Error("handlers after a panicking handler should still run")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic was not logged: %q", buf.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(newBaseEvent("x"))
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe("x", func(e Event) {})
			bus.Publish(newBaseEvent("x"))
			bus.Unsubscribe(id)
		}()
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
}

// ---- Sink Tests ----

func TestBusSink_OnUpdate(t *testing.T) {
	bus := NewBus(nil)
	var got SessionProgressEvent
	bus.Subscribe(TypeSessionProgress, func(e Event) {
		got = e.(SessionProgressEvent)
	})

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	NewBusSink(bus).OnUpdate("s1", session.Update{
		ProgressPercent: 60,
		CurrentAgent:    "unit-tester, e2e-tester",
		Message:         "round 2 dispatched",
		Status:          session.StatusRunning,
		Timestamp:       ts,
	})

	if got.SessionID != "s1" || got.ProgressPercent != 60 {
		t.Errorf("event = %+v", got)
	}
	if got.Status != "running" {
		t.Errorf("Status = %q, want running", got.Status)
	}
	if !got.Timestamp().Equal(ts) {
		t.Errorf("Timestamp() = %v, want %v", got.Timestamp(), ts)
	}
}
